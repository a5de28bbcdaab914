package authcore

import (
	"net/url"
	"time"
)

// Config configures a [Session] and its gateway.
type Config struct {
	API     APIConfig
	Gateway GatewayConfig
	Metrics MetricsConfig
}

// APIConfig locates the remote Auth API.
type APIConfig struct {
	// BaseURL is the API root, e.g. "https://rates.example.com/api".
	BaseURL string
	// Timeout is the fixed per-request deadline applied to every call that
	// flows through the gateway.
	Timeout time.Duration
}

// GatewayConfig tunes the gateway's recovery cycle. The defaults reproduce
// the baseline contract: one independent refresh per failing request, no
// deduplication, no throttle.
type GatewayConfig struct {
	// SingleFlightRefresh collapses concurrent recovery cycles into one
	// refresh call.
	SingleFlightRefresh bool
	// PreemptiveRefresh refreshes before sending when the persisted access
	// token is already past its exp claim.
	PreemptiveRefresh bool
	// RefreshPerMinute bounds recovery-cycle refresh calls. Zero means
	// unlimited.
	RefreshPerMinute int
}

// MetricsConfig enables the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration: 15 second request
// deadline, metrics on, gateway extras off.
func DefaultConfig() Config {
	return Config{
		API:     APIConfig{Timeout: 15 * time.Second},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Validate checks the configuration for structural errors.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return ErrBaseURLRequired
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidBaseURL
	}
	if c.API.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
