package storage

import (
	"context"
	"errors"
)

// Mirror keys. Clear removes all of them.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserData     = "user_data"
)

// Keys lists every mirror key, in persist order.
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyUserData}

// ErrNotFound is returned by Get for an absent key.
var ErrNotFound = errors.New("storage: key not found")

// Store is the persisted key-value mirror of the session.
//
// Implementations must treat Delete and Clear as idempotent: removing an
// absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
