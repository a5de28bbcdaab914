// Package authapi is the REST client for the RatePanel Auth API. It covers
// the credential endpoints (login, logout, register, current user, token
// refresh) and the password-assistance endpoints (change, forgot, reset).
//
// The client performs no retries and holds no state: token injection and the
// one-shot 401 recovery cycle belong to the gateway transport installed on
// the *http.Client it is given.
//
// # Architecture boundaries
//
// This package owns the wire types of the remote API ([User], [LoginResponse],
// [Credentials]) and the translation of HTTP failures into [APIError] values.
// It must not read or write the persisted session mirror and must not decide
// what a failure means for session state — that is authcore's job.
package authapi
