// Package user persists principals. Memory and Postgres implementations
// share the Store interface; the service never sees the difference.
package user

import (
	"context"

	"medigate/internal/auth"
)

// Store is the durable user store.
type Store interface {
	// Create inserts a user; returns sentinel.ErrConflict when the username
	// is taken (case-insensitive).
	Create(ctx context.Context, u *auth.User) error
	// FindByUsername returns sentinel.ErrNotFound for unknown usernames.
	FindByUsername(ctx context.Context, username string) (*auth.User, error)
}
