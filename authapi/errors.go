package authapi

import (
	"errors"
	"fmt"
)

// ErrNoServerResponse marks a transport-level failure: the request never
// produced an HTTP response. It wraps the underlying network error.
var ErrNoServerResponse = errors.New("no server response")

// APIError is an HTTP error response from the Auth API. The body fields
// mirror the three shapes the server is known to produce.
type APIError struct {
	Status  int
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Err     string `json:"error"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if r := e.Reason(); r != "" {
		return fmt.Sprintf("auth api: %d: %s", e.Status, r)
	}
	return fmt.Sprintf("auth api: %d", e.Status)
}

// Reason returns the human-readable explanation extracted from the error
// body, checked in order: message, detail, error. Empty when the body
// carried none of them.
func (e *APIError) Reason() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Detail != "":
		return e.Detail
	default:
		return e.Err
	}
}

// Unauthorized reports whether the response status was 401.
func (e *APIError) Unauthorized() bool {
	return e.Status == 401
}
