package authcore

import (
	"context"

	"github.com/ratepanel/authcore/authapi"
)

// User is the authenticated principal's profile.
type User = authapi.User

// BoolFlag is the superuser flag type, tolerant of the legacy integer form.
type BoolFlag = authapi.BoolFlag

// Credentials is a username/password login request.
type Credentials = authapi.Credentials

// Registration is an account-creation request.
type Registration = authapi.Registration

// Role names recognized by the console.
const (
	RoleAdmin      = authapi.RoleAdmin
	RoleCityWorker = authapi.RoleCityWorker
)

// AuthAPI is the slice of the Auth API the session state machine consumes.
// *authapi.Client satisfies it; tests substitute stubs.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (*authapi.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Register(ctx context.Context, reg Registration) error
	CurrentUser(ctx context.Context) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

var _ AuthAPI = (*authapi.Client)(nil)

// LoginResult is the discriminated outcome of Login and Register. Message is
// populated only on failure, with the human-readable explanation extracted
// from the error response.
type LoginResult struct {
	Success bool
	Message string
}

// UserPatch is a shallow profile update. Nil fields are left untouched.
type UserPatch struct {
	Username    *string
	Email       *string
	Role        *string
	IsSuperuser *bool
}
