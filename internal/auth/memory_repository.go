package auth

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository stores users and sessions in in-process maps, ideal for
// local development or tests.
type InMemoryRepository struct {
	mu           sync.RWMutex
	users        map[string]User
	usersByOAuth map[string]string
	sessions     map[string]Session
}

// NewInMemoryRepository constructs an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:        make(map[string]User),
		usersByOAuth: make(map[string]string),
		sessions:     make(map[string]Session),
	}
}

// GetSessionAndUser returns the session and its user, or nil for both.
func (r *InMemoryRepository) GetSessionAndUser(_ context.Context, sessionID string) (*Session, *User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil, nil
	}
	user, ok := r.users[session.UserID]
	if !ok {
		return nil, nil, nil
	}
	return &session, &user, nil
}

// SetUser inserts a user.
func (r *InMemoryRepository) SetUser(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = user
	r.usersByOAuth[user.OAuthID] = user.ID
	return nil
}

// GetUserByOAuthID returns the user with the given oauth id, or nil.
func (r *InMemoryRepository) GetUserByOAuthID(_ context.Context, oauthID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.usersByOAuth[oauthID]
	if !ok {
		return nil, nil
	}
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// SetSession inserts a session.
func (r *InMemoryRepository) SetSession(_ context.Context, session Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = session
	return nil
}

// UpdateSessionExpiry extends an existing session's expiry.
func (r *InMemoryRepository) UpdateSessionExpiry(_ context.Context, sessionID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	session.ExpiresAt = expiresAt
	r.sessions[sessionID] = session
	return nil
}

// DeleteSession removes a session; deleting an absent session is a no-op.
func (r *InMemoryRepository) DeleteSession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}
