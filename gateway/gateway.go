package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ratepanel/authcore/internal/metrics"
	"github.com/ratepanel/authcore/storage"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
	bearerPrefix        = "Bearer "

	defaultRefreshTimeout = 15 * time.Second
)

// errNoReplayableBody aborts a retry whose original request body cannot be
// re-read.
var errNoReplayableBody = errors.New("gateway: request body not replayable")

// retryMarkerKey is the per-request one-shot marker. Its presence on a
// request context means the request already went through one recovery cycle
// and must not trigger another.
type retryMarkerKey struct{}

// Config configures a [Transport].
type Config struct {
	// RefreshURL is the absolute URL of the token-refresh endpoint.
	RefreshURL string

	// Base performs the actual round-trips. Defaults to
	// http.DefaultTransport.
	Base http.RoundTripper

	// RefreshClient issues the refresh call itself. It must not route back
	// through the gateway. Defaults to a bare client with a fixed timeout.
	RefreshClient *http.Client

	// RestartFunc is invoked after an unrecoverable refresh failure, once
	// the mirror is cleared. The host is expected to discard all in-memory
	// state and start over.
	RestartFunc func()

	// SingleFlightRefresh collapses concurrent recovery cycles into one
	// refresh call. Off by default: the baseline contract is one
	// independent refresh per failing request.
	SingleFlightRefresh bool

	// PreemptiveRefresh refreshes before sending when the persisted access
	// token's exp claim is already past. The claim is read without
	// signature verification; it is a liveness hint, the server stays
	// authoritative.
	PreemptiveRefresh bool

	// RefreshLimit, when non-nil, bounds how often recovery cycles may call
	// the refresh endpoint. A throttled cycle propagates the original 401.
	RefreshLimit *rate.Limiter

	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics
}

// Transport is the gateway [http.RoundTripper].
type Transport struct {
	store      storage.Store
	base       http.RoundTripper
	refreshURL string
	bare       *http.Client
	restart    func()
	useSingle  bool
	preemptive bool
	limit      *rate.Limiter
	log        logrus.FieldLogger
	metrics    *metrics.Metrics

	group singleflight.Group
}

// New creates a gateway transport persisting through store.
func New(store storage.Store, cfg Config) *Transport {
	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}
	bare := cfg.RefreshClient
	if bare == nil {
		bare = &http.Client{Timeout: defaultRefreshTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New(false)
	}
	return &Transport{
		store:      store,
		base:       base,
		refreshURL: cfg.RefreshURL,
		bare:       bare,
		restart:    cfg.RestartFunc,
		useSingle:  cfg.SingleFlightRefresh,
		preemptive: cfg.PreemptiveRefresh,
		limit:      cfg.RefreshLimit,
		log:        logger,
		metrics:    m,
	}
}

// RoundTrip implements http.RoundTripper. The incoming request is never
// mutated; credential injection happens on a clone.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	out := req.Clone(ctx)
	if out.Header.Get(headerRequestID) == "" {
		out.Header.Set(headerRequestID, uuid.NewString())
	}

	if token, err := t.store.Get(ctx, storage.KeyAccessToken); err == nil && token != "" {
		if t.preemptive && tokenExpired(token) {
			if fresh, ok := t.recover(ctx); ok {
				token = fresh
			}
		}
		out.Header.Set(headerAuthorization, bearerPrefix+token)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if ctx.Value(retryMarkerKey{}) != nil {
		// Already retried once; the 401 stands.
		return resp, nil
	}

	fresh, ok := t.recover(ctx)
	if !ok {
		return resp, nil
	}

	retry, rerr := cloneForRetry(req)
	if rerr != nil {
		t.log.WithError(rerr).Warn("gateway: cannot retry request")
		return resp, nil
	}

	// The original 401 response is superseded by the retry.
	resp.Body.Close()

	t.metrics.Inc(metrics.MetricGatewayRetry)
	retry = retry.WithContext(context.WithValue(ctx, retryMarkerKey{}, true))
	retry.Header.Set(headerAuthorization, bearerPrefix+fresh)
	return t.RoundTrip(retry)
}

// recover runs one refresh cycle: read the persisted refresh token, exchange
// it, persist the new access token. Returns the new token, or false when the
// original error must propagate unchanged (no refresh token, throttled) or
// the session was terminated (refresh failure).
func (t *Transport) recover(ctx context.Context) (string, bool) {
	refreshToken, err := t.store.Get(ctx, storage.KeyRefreshToken)
	if err != nil || refreshToken == "" {
		return "", false
	}

	if t.limit != nil && !t.limit.Allow() {
		t.metrics.Inc(metrics.MetricGatewayRefreshThrottled)
		t.log.Warn("gateway: refresh throttled")
		return "", false
	}

	var access string
	if t.useSingle {
		v, serr, _ := t.group.Do("refresh", func() (any, error) {
			return t.exchange(ctx, refreshToken)
		})
		if serr != nil {
			err = serr
		} else {
			access = v.(string)
		}
	} else {
		access, err = t.exchange(ctx, refreshToken)
	}

	if err != nil {
		t.metrics.Inc(metrics.MetricGatewayRefreshFailure)
		t.log.WithError(err).Warn("gateway: refresh failed, terminating session")
		if cerr := t.store.Clear(ctx); cerr != nil {
			t.log.WithError(cerr).Warn("gateway: mirror clear failed")
		}
		if t.restart != nil {
			t.metrics.Inc(metrics.MetricGatewayRestart)
			t.restart()
		}
		return "", false
	}

	if err := t.store.Set(ctx, storage.KeyAccessToken, access); err != nil {
		t.log.WithError(err).Warn("gateway: persist refreshed token failed")
	}
	t.metrics.Inc(metrics.MetricGatewayRefreshSuccess)
	return access, true
}

// exchange posts the refresh token to the refresh endpoint on the bare
// client.
func (t *Transport) exchange(ctx context.Context, refreshToken string) (string, error) {
	body, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.bare.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway: refresh endpoint returned %d", resp.StatusCode)
	}

	var out struct {
		Access string `json:"access"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gateway: decode refresh response: %w", err)
	}
	if out.Access == "" {
		return "", errors.New("gateway: refresh response missing access token")
	}
	return out.Access, nil
}

// cloneForRetry rebuilds the original request with a fresh body. GetBody is
// required for non-empty bodies; the first attempt consumed the original.
func cloneForRetry(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		out.Body = nil
		return out, nil
	}
	if req.GetBody == nil {
		return nil, errNoReplayableBody
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	out.Body = body
	return out, nil
}
