package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository implements Repository on Redis. Sessions carry a TTL equal
// to their remaining lifetime, so expired sessions disappear on their own and
// lazy cleanup never accumulates rows. Users are kept without TTL, with a
// secondary key indexing them by oauth id.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a Redis-backed repository.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func userKey(id string) string       { return "user:" + id }
func oauthKey(oauthID string) string { return "user_oauth:" + oauthID }
func sessionKey(id string) string    { return "session:" + id }

type redisSession struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type redisUser struct {
	Username      string `json:"username"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	ProfileImage  string `json:"profile_image,omitempty"`
	OAuthID       string `json:"oauth_id"`
}

// GetSessionAndUser loads the session record and its user.
func (r *RedisRepository) GetSessionAndUser(ctx context.Context, sessionID string) (*Session, *User, error) {
	raw, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var record redisSession
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, nil, fmt.Errorf("decode session %q: %w", sessionID, err)
	}

	user, err := r.getUser(ctx, record.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, nil
	}

	session := &Session{
		ID:        sessionID,
		UserID:    record.UserID,
		ExpiresAt: record.ExpiresAt,
	}
	return session, user, nil
}

// SetUser inserts the user record and its oauth-id index entry.
func (r *RedisRepository) SetUser(ctx context.Context, user User) error {
	data, err := json.Marshal(redisUser{
		Username:      user.Username,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		ProfileImage:  user.ProfileImage,
		OAuthID:       user.OAuthID,
	})
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	pipe.Set(ctx, oauthKey(user.OAuthID), user.ID, 0)
	_, err = pipe.Exec(ctx)
	return err
}

// GetUserByOAuthID resolves the oauth-id index and loads the user.
func (r *RedisRepository) GetUserByOAuthID(ctx context.Context, oauthID string) (*User, error) {
	id, err := r.client.Get(ctx, oauthKey(oauthID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.getUser(ctx, id)
}

// SetSession stores the session with its remaining lifetime as TTL.
func (r *RedisRepository) SetSession(ctx context.Context, session Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %q already expired", session.ID)
	}

	data, err := json.Marshal(redisSession{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.Set(ctx, sessionKey(session.ID), data, ttl).Err()
}

// UpdateSessionExpiry rewrites the session with the new expiry and TTL. A
// missing session is left untouched.
func (r *RedisRepository) UpdateSessionExpiry(ctx context.Context, sessionID string, expiresAt time.Time) error {
	raw, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	var record redisSession
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return fmt.Errorf("decode session %q: %w", sessionID, err)
	}
	record.ExpiresAt = expiresAt

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.Set(ctx, sessionKey(sessionID), data, time.Until(expiresAt)).Err()
}

// DeleteSession removes the session key; idempotent.
func (r *RedisRepository) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

func (r *RedisRepository) getUser(ctx context.Context, id string) (*User, error) {
	raw, err := r.client.Get(ctx, userKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record redisUser
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("decode user %q: %w", id, err)
	}
	return &User{
		ID:            id,
		Username:      record.Username,
		Email:         record.Email,
		EmailVerified: record.EmailVerified,
		ProfileImage:  record.ProfileImage,
		OAuthID:       record.OAuthID,
	}, nil
}
