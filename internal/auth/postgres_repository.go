package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type userRow struct {
	ID            string         `db:"id"`
	Username      string         `db:"username"`
	Email         sql.NullString `db:"email"`
	EmailVerified bool           `db:"email_verified"`
	ProfileImage  sql.NullString `db:"profile_image"`
	OAuthID       string         `db:"oauth_id"`
}

func (r userRow) toUser() *User {
	return &User{
		ID:            r.ID,
		Username:      r.Username,
		Email:         r.Email.String,
		EmailVerified: r.EmailVerified,
		ProfileImage:  r.ProfileImage.String,
		OAuthID:       r.OAuthID,
	}
}

type sessionUserRow struct {
	SessionID string    `db:"session_id"`
	ExpiresAt time.Time `db:"expires_at"`
	userRow
}

// GetSessionAndUser loads the session and its user in a single joined query.
func (r *PostgresRepository) GetSessionAndUser(ctx context.Context, sessionID string) (*Session, *User, error) {
	const query = `
		SELECT s.id AS session_id, s.expires_at,
		       u.id, u.username, u.email, u.email_verified, u.profile_image, u.oauth_id
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1
	`

	var row sessionUserRow
	if err := r.db.GetContext(ctx, &row, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	session := &Session{
		ID:        row.SessionID,
		UserID:    row.ID,
		ExpiresAt: row.ExpiresAt,
	}
	return session, row.toUser(), nil
}

// SetUser inserts a new user.
func (r *PostgresRepository) SetUser(ctx context.Context, user User) error {
	const query = `
		INSERT INTO users (id, username, email, email_verified, profile_image, oauth_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		nullableString(user.Email),
		user.EmailVerified,
		nullableString(user.ProfileImage),
		user.OAuthID,
	)
	return err
}

// GetUserByOAuthID looks up a user by its oauth id.
func (r *PostgresRepository) GetUserByOAuthID(ctx context.Context, oauthID string) (*User, error) {
	const query = `
		SELECT id, username, email, email_verified, profile_image, oauth_id
		FROM users
		WHERE oauth_id = $1
	`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, oauthID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toUser(), nil
}

// SetSession inserts a new session.
func (r *PostgresRepository) SetSession(ctx context.Context, session Session) error {
	const query = `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, session.ID, session.UserID, session.ExpiresAt)
	return err
}

// UpdateSessionExpiry extends the session's expiry. Updating a missing
// session affects zero rows and is not an error.
func (r *PostgresRepository) UpdateSessionExpiry(ctx context.Context, sessionID string, expiresAt time.Time) error {
	const query = `UPDATE sessions SET expires_at = $2 WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, sessionID, expiresAt)
	return err
}

// DeleteSession removes the session; idempotent.
func (r *PostgresRepository) DeleteSession(ctx context.Context, sessionID string) error {
	const query = `DELETE FROM sessions WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, sessionID)
	return err
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
