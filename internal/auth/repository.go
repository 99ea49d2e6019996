package auth

import (
	"context"
	"time"
)

// Repository defines the persistence contract for users and sessions. The
// engine is a stateless protocol layer over it; all durable state lives behind
// this interface.
//
// Lookups report "not found" as nil results, never as an error. Errors are
// reserved for storage failures.
type Repository interface {
	// GetSessionAndUser returns the session and its user in one lookup.
	// Both are present or both are nil.
	GetSessionAndUser(ctx context.Context, sessionID string) (*Session, *User, error)

	// SetUser inserts a user. The caller generates the id.
	SetUser(ctx context.Context, user User) error

	// GetUserByOAuthID returns the user with the given oauth id, or nil.
	GetUserByOAuthID(ctx context.Context, oauthID string) (*User, error)

	// SetSession inserts a session. The caller generates the id.
	SetSession(ctx context.Context, session Session) error

	// UpdateSessionExpiry extends an existing session's expiry.
	UpdateSessionExpiry(ctx context.Context, sessionID string, expiresAt time.Time) error

	// DeleteSession removes a session. Deleting an absent session is not an
	// error.
	DeleteSession(ctx context.Context, sessionID string) error
}
