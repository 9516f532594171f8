// Package store defines the persistence interfaces for user identity.
// Room state is deliberately not persisted; rooms live and die in process
// memory.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// User represents an account in the system. IDs are opaque strings
// (UUIDs) so they can travel through the wire protocol unchanged.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	IsGuest      bool
	CreatedAt    time.Time
}

// UserStore provides user persistence operations.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)
	CreateGuestUser(ctx context.Context) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	// GetUsersByIDs resolves display info for a set of user ids. Unknown
	// ids are skipped, not errors.
	GetUsersByIDs(ctx context.Context, ids []string) ([]*User, error)
}

// Store is the full persistence interface.
type Store interface {
	UserStore
	Close() error
}
