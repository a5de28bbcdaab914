package authcore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ratepanel/authcore/authapi"
	internalmetrics "github.com/ratepanel/authcore/internal/metrics"
	"github.com/ratepanel/authcore/storage"
)

// Session owns the authentication state of the console: tokens, the current
// user profile, and the initialization latch. Every mutation is mirrored to
// the persisted storage backend.
//
// The invariant Authenticated ⟹ user present ∧ access token present holds
// for all reachable states; any mutation that would break it resets the
// session to the unauthenticated terminal state instead.
//
// Methods serialize on an internal mutex, so concurrent Initialize calls
// converge on one restore-and-validate sequence.
type Session struct {
	mu sync.Mutex

	api     AuthAPI
	store   storage.Store
	http    *http.Client
	log     logrus.FieldLogger
	metrics *internalmetrics.Metrics

	user          *User
	accessToken   string
	refreshToken  string
	authenticated bool
	initialized   bool
}

// HTTPClient returns the gateway-wrapped client. Other service clients of
// the same API should use it so bearer injection and 401 recovery apply to
// them too.
func (s *Session) HTTPClient() *http.Client {
	return s.http
}

// Initialize restores the session from the persisted mirror and verifies it
// against the Auth API. It is idempotent: once the latch is set the call
// returns immediately and performs no I/O.
//
// After Initialize returns, Initialized reports true and Authenticated
// accurately reflects server-side session validity — the session is never
// left authenticated-but-unverified.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	access := s.readMirror(ctx, storage.KeyAccessToken)
	refresh := s.readMirror(ctx, storage.KeyRefreshToken)
	if access == "" || refresh == "" {
		s.initialized = true
		return nil
	}

	s.accessToken = access
	s.refreshToken = refresh

	user, err := authapi.DecodeUser([]byte(s.readMirror(ctx, storage.KeyUserData)))
	if err != nil {
		// Malformed cached state is treated exactly like an authentication
		// failure: full reset.
		s.log.WithError(err).Warn("session: cached profile rejected")
		s.clearLocked(ctx)
		return nil
	}

	// Optimistic trust-then-verify: the cached profile counts until the
	// server says otherwise.
	s.user = user
	s.authenticated = true
	s.metrics.Inc(internalmetrics.MetricSessionRestored)

	if !s.validateTokenLocked(ctx) {
		s.clearLocked(ctx)
		return nil
	}

	s.initialized = true
	s.ensureInvariantLocked(ctx)
	return nil
}

// Login authenticates against the Auth API. On success the token pair and
// profile are installed and persisted atomically with respect to other
// session operations; on failure the session is left untouched and the
// result carries a human-readable message.
func (s *Session) Login(ctx context.Context, creds Credentials) LoginResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.api.Login(ctx, creds)
	if err != nil {
		s.metrics.Inc(internalmetrics.MetricLoginFailure)
		return failureResult(err, "login failed")
	}

	s.accessToken = res.Access
	s.refreshToken = res.Refresh
	user := res.User
	s.user = &user
	s.authenticated = true

	s.writeMirror(ctx, storage.KeyAccessToken, res.Access)
	s.writeMirror(ctx, storage.KeyRefreshToken, res.Refresh)
	s.persistUserLocked(ctx)

	s.metrics.Inc(internalmetrics.MetricLoginSuccess)
	s.ensureInvariantLocked(ctx)
	return LoginResult{Success: true}
}

// Register creates an account. It never mutates session state; the caller
// logs in separately.
func (s *Session) Register(ctx context.Context, reg Registration) LoginResult {
	if err := s.api.Register(ctx, reg); err != nil {
		s.metrics.Inc(internalmetrics.MetricRegisterFailure)
		return failureResult(err, "registration failed")
	}
	s.metrics.Inc(internalmetrics.MetricRegisterSuccess)
	return LoginResult{Success: true}
}

// ValidateToken verifies the access token by fetching the current user. On
// success the profile is overwritten and re-persisted. On failure it falls
// back to RefreshAccessToken and returns that outcome.
func (s *Session) ValidateToken(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateTokenLocked(ctx)
}

func (s *Session) validateTokenLocked(ctx context.Context) bool {
	if s.accessToken == "" {
		return false
	}

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.metrics.Inc(internalmetrics.MetricValidateFailure)
		return s.refreshLocked(ctx)
	}

	s.user = user
	s.authenticated = true
	s.persistUserLocked(ctx)
	s.metrics.Inc(internalmetrics.MetricValidateSuccess)
	return true
}

// RefreshAccessToken exchanges the refresh token for a new access token.
// Exactly one refresh call per invocation; any failure clears the entire
// session.
func (s *Session) RefreshAccessToken(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) bool {
	if s.refreshToken == "" {
		return false
	}

	access, err := s.api.RefreshToken(ctx, s.refreshToken)
	if err != nil {
		s.metrics.Inc(internalmetrics.MetricRefreshFailure)
		s.clearLocked(ctx)
		return false
	}

	s.accessToken = access
	s.writeMirror(ctx, storage.KeyAccessToken, access)
	s.metrics.Inc(internalmetrics.MetricRefreshSuccess)
	return true
}

// Logout invalidates the session server-side on a best-effort basis and
// always clears local state and the persisted mirror.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshToken != "" {
		if err := s.api.Logout(ctx, s.refreshToken); err != nil {
			s.log.WithError(err).Warn("session: server-side logout failed")
		}
	}
	s.metrics.Inc(internalmetrics.MetricLogout)
	s.clearLocked(ctx)
}

// UpdateUser shallow-merges the patch into the current profile and
// re-persists it. No server round-trip. A no-op when unauthenticated.
func (s *Session) UpdateUser(ctx context.Context, patch UserPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return
	}
	if patch.Username != nil {
		s.user.Username = *patch.Username
	}
	if patch.Email != nil {
		s.user.Email = *patch.Email
	}
	if patch.Role != nil {
		s.user.Role = *patch.Role
	}
	if patch.IsSuperuser != nil {
		s.user.IsSuperuser = BoolFlag(*patch.IsSuperuser)
	}
	s.persistUserLocked(ctx)
}

// HasRole reports whether the current user satisfies role. The admin role is
// satisfied by a truthy superuser flag as well; every other role matches by
// exact equality. False when no user is present.
func (s *Session) HasRole(role string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return false
	}
	if role == RoleAdmin {
		return s.user.IsAdmin()
	}
	return s.user.Role == role
}

// Authenticated reports whether a verified user session is active.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Initialized reports whether the startup sequence has completed. The latch
// is monotonic within a process lifetime.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// HasToken reports whether an access token is held.
func (s *Session) HasToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != ""
}

// AccessToken returns the current access token, empty when logged out.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token, empty when logged out.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// CurrentUser returns a copy of the current profile, nil when logged out.
func (s *Session) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAdmin reports whether the current user has admin capability.
func (s *Session) IsAdmin() bool {
	return s.HasRole(RoleAdmin)
}

// IsWorker reports whether the current user has city-worker capability.
func (s *Session) IsWorker() bool {
	return s.HasRole(RoleCityWorker)
}

// DisplayName returns a short label for the current user.
func (s *Session) DisplayName() string {
	return s.CurrentUser().DisplayName()
}

// clearLocked resets to the unauthenticated terminal state and wipes the
// mirror. The initialization latch stays set: a cleared session is a known
// state, not an uninitialized one.
func (s *Session) clearLocked(ctx context.Context) {
	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
	s.authenticated = false
	s.initialized = true

	if err := s.store.Clear(ctx); err != nil {
		s.log.WithError(err).Warn("session: mirror clear failed")
	}
	s.metrics.Inc(internalmetrics.MetricSessionCleared)
}

// ensureInvariantLocked force-resets the session if it claims authentication
// without a user or token.
func (s *Session) ensureInvariantLocked(ctx context.Context) {
	if s.authenticated && (s.user == nil || s.accessToken == "") {
		s.log.Error("session: invariant violated, resetting")
		s.clearLocked(ctx)
	}
}

func (s *Session) persistUserLocked(ctx context.Context) {
	if s.user == nil {
		return
	}
	data, err := json.Marshal(s.user)
	if err != nil {
		s.log.WithError(err).Warn("session: encode profile failed")
		return
	}
	s.writeMirror(ctx, storage.KeyUserData, string(data))
}

// readMirror treats every failure as an absent key: a broken mirror must
// resolve to the safe unauthenticated default, never to an error.
func (s *Session) readMirror(ctx context.Context, key string) string {
	v, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.WithError(err).WithField("key", key).Warn("session: mirror read failed")
		}
		return ""
	}
	return v
}

func (s *Session) writeMirror(ctx context.Context, key, value string) {
	if err := s.store.Set(ctx, key, value); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("session: mirror write failed")
	}
}

// failureResult extracts the message from an API error body, checked in
// order message, detail, error, with a generic fallback for transport
// failures and empty bodies.
func failureResult(err error, fallback string) LoginResult {
	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) {
		if reason := apiErr.Reason(); reason != "" {
			return LoginResult{Message: reason}
		}
	}
	return LoginResult{Message: fallback}
}
