package auth

import "time"

// User is an identity record established via OAuth. A user is created exactly
// once, on the first successful callback for its OAuthID, and is immutable
// within this package afterwards. Email and ProfileImage may be empty when the
// provider did not supply them.
type User struct {
	ID            string
	Username      string
	Email         string
	EmailVerified bool
	ProfileImage  string
	OAuthID       string
}

// Session ties an opaque high-entropy token to a user. Only ExpiresAt ever
// changes after creation (idle refresh); the id is never rotated.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// ProviderUser is the normalized profile a provider returns from a validated
// callback.
type ProviderUser struct {
	ID            string
	Username      string
	Email         string
	EmailVerified bool
	ProfileImage  string
}

// OAuthIDFor derives the stable identity key for a provider user.
func OAuthIDFor(providerID, providerUserID string) string {
	return providerID + ":" + providerUserID
}
