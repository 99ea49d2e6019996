package auth

import (
	"context"
	"fmt"
	"time"
)

// sessionState is the lifecycle state derived from a session's expiry. It is
// never stored; it is recomputed from ExpiresAt on every read.
type sessionState int

const (
	stateFresh sessionState = iota
	stateIdle
	stateExpired
)

// lifecycleState classifies a session relative to now: expired once past
// ExpiresAt, idle once the remaining lifetime drops below the idle threshold,
// fresh otherwise.
func lifecycleState(expiresAt, now time.Time, idleThreshold time.Duration) sessionState {
	remaining := expiresAt.Sub(now)
	switch {
	case remaining <= 0:
		return stateExpired
	case remaining < idleThreshold:
		return stateIdle
	default:
		return stateFresh
	}
}

// SessionEngine owns session state transitions: creation, validation with
// idle refresh, and invalidation.
type SessionEngine struct {
	repo          Repository
	cookies       CookiePolicy
	lifetime      time.Duration
	idleThreshold time.Duration
}

// NewSessionEngine creates a SessionEngine. Zero durations fall back to a
// 30-day lifetime with refresh once less than half of it remains.
func NewSessionEngine(repo Repository, cookies CookiePolicy, lifetime, idleThreshold time.Duration) *SessionEngine {
	if lifetime == 0 {
		lifetime = 30 * 24 * time.Hour
	}
	if idleThreshold == 0 {
		idleThreshold = lifetime / 2
	}
	return &SessionEngine{
		repo:          repo,
		cookies:       cookies,
		lifetime:      lifetime,
		idleThreshold: idleThreshold,
	}
}

// Create generates a new session for the user and persists it.
func (e *SessionEngine) Create(ctx context.Context, userID string) (Session, error) {
	id, err := NewToken(sessionTokenLength)
	if err != nil {
		return Session{}, err
	}

	session := Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: time.Now().Add(e.lifetime),
	}
	if err := e.repo.SetSession(ctx, session); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Validate resolves a session id to its user and returns any cookie mutations
// the caller must apply. An absent, dangling or expired session yields a nil
// user, never an error; errors are reserved for storage failures.
//
// An idle session is silently extended to a full lifetime and its cookie
// reissued with the same session id.
func (e *SessionEngine) Validate(ctx context.Context, sessionID string) (*User, []Cookie, error) {
	if sessionID == "" {
		return nil, nil, nil
	}

	session, user, err := e.repo.GetSessionAndUser(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil || user == nil {
		return nil, nil, nil
	}

	switch lifecycleState(session.ExpiresAt, time.Now(), e.idleThreshold) {
	case stateExpired:
		// The row is inert past its expiry; leave it for later cleanup.
		return nil, []Cookie{e.cookies.BlankSessionCookie()}, nil
	case stateIdle:
		expiresAt := time.Now().Add(e.lifetime)
		if err := e.repo.UpdateSessionExpiry(ctx, session.ID, expiresAt); err != nil {
			return nil, nil, fmt.Errorf("extend session: %w", err)
		}
		return user, []Cookie{e.cookies.SessionCookie(session.ID)}, nil
	default:
		return user, nil, nil
	}
}

// Invalidate deletes the session and returns the clearing cookie mutation.
// Deleting an absent session is not an error, so Invalidate is idempotent.
func (e *SessionEngine) Invalidate(ctx context.Context, sessionID string) ([]Cookie, error) {
	if err := e.repo.DeleteSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	return []Cookie{e.cookies.BlankSessionCookie()}, nil
}
