package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// Endpoint paths, relative to the API base URL.
const (
	pathLogin          = "/auth/login/"
	pathLogout         = "/auth/logout/"
	pathRegister       = "/auth/register/"
	pathCurrentUser    = "/auth/user/"
	pathRefresh        = "/token/refresh/"
	pathChangePassword = "/auth/change-password/"
	pathForgotPassword = "/auth/forgot-password/"
	pathResetPassword  = "/auth/reset-password/"
)

// RefreshPath is the token-refresh endpoint path. The gateway calls it
// directly on a bare client, bypassing this package.
const RefreshPath = pathRefresh

// Client talks to the Auth API over the given *http.Client. Pass the
// gateway-wrapped client so bearer injection and 401 recovery apply; the
// refresh endpoint is the one exception and is owned by the gateway itself.
type Client struct {
	base string
	http *http.Client
	log  logrus.FieldLogger
}

// NewClient creates a [Client] for the API at baseURL. A nil httpClient
// falls back to http.DefaultClient, a nil logger to the logrus standard
// logger.
func NewClient(baseURL string, httpClient *http.Client, logger logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: httpClient,
		log:  logger,
	}
}

// Login exchanges credentials for a token pair and the user profile.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, pathLogin, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the refresh token server-side. Callers treat failure as
// best-effort; local session state is cleared regardless.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh": refreshToken}
	return c.do(ctx, http.MethodPost, pathLogout, body, nil)
}

// Register creates a new account. It does not authenticate the session.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.do(ctx, http.MethodPost, pathRegister, reg, nil)
}

// CurrentUser fetches the authenticated principal's profile. A 401 here is
// the canonical signal of an expired access token.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, pathCurrentUser, nil, &raw); err != nil {
		return nil, err
	}
	return DecodeUser(raw)
}

// RefreshToken exchanges the refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	var out struct {
		Access string `json:"access"`
	}
	body := map[string]string{"refresh": refreshToken}
	if err := c.do(ctx, http.MethodPost, pathRefresh, body, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", &APIError{Status: http.StatusBadGateway, Detail: "refresh response missing access token"}
	}
	return out.Access, nil
}

// ChangePassword changes the current user's password.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPost, pathChangePassword, req, nil)
}

// ForgotPassword requests a password-reset challenge for the given email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, pathForgotPassword, body, nil)
}

// ResetPassword confirms a password-reset challenge.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return c.do(ctx, http.MethodPost, pathResetPassword, req, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Debug("authapi: transport failure")
		return fmt.Errorf("%w: %v", ErrNoServerResponse, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		// Best effort: an empty or non-JSON error body still yields a usable APIError.
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("authapi: decode %s response: %w", path, err)
	}
	return nil
}
