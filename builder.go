package authcore

import (
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ratepanel/authcore/authapi"
	"github.com/ratepanel/authcore/gateway"
	internalmetrics "github.com/ratepanel/authcore/internal/metrics"
	"github.com/ratepanel/authcore/storage"
)

// Builder assembles a [Session] with its gateway and Auth API client.
// Construction is allocation-only; no I/O happens until the first Session
// operation.
type Builder struct {
	config  Config
	store   storage.Store
	base    *http.Client
	logger  logrus.FieldLogger
	api     AuthAPI
	restart func()

	built bool
}

// New creates a Builder with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBaseURL sets the Auth API base URL.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithStorage sets the persisted mirror backend. Required.
func (b *Builder) WithStorage(store storage.Store) *Builder {
	b.store = store
	return b
}

// WithHTTPClient sets the underlying client the gateway wraps. Its transport
// becomes the gateway's base round-tripper.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.base = client
	return b
}

// WithLogger sets the logger shared by the session, gateway, and API client.
func (b *Builder) WithLogger(logger logrus.FieldLogger) *Builder {
	b.logger = logger
	return b
}

// WithAuthAPI overrides the Auth API client. Intended for tests; production
// wiring builds the real client from the config.
func (b *Builder) WithAuthAPI(api AuthAPI) *Builder {
	b.api = api
	return b
}

// WithRestartFunc sets the hook invoked when the gateway terminates the
// session after an unrecoverable refresh failure. The host should discard
// all in-memory state — the equivalent of a full page reload.
func (b *Builder) WithRestartFunc(restart func()) *Builder {
	b.restart = restart
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build wires the gateway transport, the Auth API client, and the session
// store together and returns the session. A builder can build once.
func (b *Builder) Build() (*Session, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, ErrStorageRequired
	}

	logger := b.logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	m := internalmetrics.New(cfg.Metrics.Enabled)

	base := b.base
	if base == nil {
		base = &http.Client{}
	}

	var limiter *rate.Limiter
	if n := cfg.Gateway.RefreshPerMinute; n > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
	}

	transport := gateway.New(b.store, gateway.Config{
		RefreshURL:          strings.TrimRight(cfg.API.BaseURL, "/") + authapi.RefreshPath,
		Base:                base.Transport,
		RestartFunc:         b.restart,
		SingleFlightRefresh: cfg.Gateway.SingleFlightRefresh,
		PreemptiveRefresh:   cfg.Gateway.PreemptiveRefresh,
		RefreshLimit:        limiter,
		Logger:              logger,
		Metrics:             m,
	})
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   cfg.API.Timeout,
		Jar:       base.Jar,
	}

	api := b.api
	if api == nil {
		api = authapi.NewClient(cfg.API.BaseURL, httpClient, logger)
	}

	b.built = true
	return &Session{
		api:     api,
		store:   b.store,
		http:    httpClient,
		log:     logger,
		metrics: m,
	}, nil
}
