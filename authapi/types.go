package authapi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Role values recognized by the console. Any other role string is compared
// verbatim by the session's role predicate.
const (
	RoleAdmin      = "admin"
	RoleCityWorker = "city_worker"
)

// ErrProfileInvalid is returned by [DecodeUser] when a cached or received
// profile does not match the expected schema.
var ErrProfileInvalid = errors.New("authapi: invalid user profile")

// BoolFlag decodes the API's superuser flag, which older accounts carry as
// the integer 1 instead of a boolean. Only true and 1 decode to true; any
// non-boolean, non-numeric value fails the decode.
type BoolFlag bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *BoolFlag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = BoolFlag(t)
	case float64:
		*b = BoolFlag(t == 1)
	case nil:
		*b = false
	default:
		return fmt.Errorf("%w: superuser flag is %T", ErrProfileInvalid, v)
	}
	return nil
}

// MarshalJSON implements json.Marshaler. The flag is always re-encoded as a
// boolean, normalizing the legacy integer form on the next persist.
func (b BoolFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

// User is the authenticated principal's profile as served by the Auth API.
// The server attaches additional fields; they are ignored on decode and not
// round-tripped.
type User struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	IsSuperuser BoolFlag `json:"is_superuser"`
}

// IsAdmin reports whether the profile carries admin capability: the admin
// role or a truthy superuser flag.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || bool(u.IsSuperuser)
}

// IsWorker reports whether the profile carries city-worker capability.
// Unlike IsAdmin there is no superuser override.
func (u *User) IsWorker() bool {
	return u != nil && u.Role == RoleCityWorker
}

// DisplayName returns the username, falling back to the email address and
// then to a generic label.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return "User"
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	default:
		return "User"
	}
}

// DecodeUser deserializes a profile and fails closed: a decode error, a type
// mismatch, or a missing ID all reject the blob. Callers treat a rejection
// exactly like an authentication failure.
func DecodeUser(data []byte) (*User, error) {
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileInvalid, err)
	}
	if u.ID == 0 {
		return nil, fmt.Errorf("%w: missing id", ErrProfileInvalid)
	}
	return &u, nil
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// LoginResponse carries the token pair and profile returned by a successful
// login.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// ChangePasswordRequest is the change-password request body.
type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// ResetPasswordRequest confirms a password reset challenge.
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}
