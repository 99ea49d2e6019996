package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
)

// AuthorizationContext is the ephemeral flow state held in short-lived cookies
// between login start and callback. State is the CSRF token; CodeVerifier is
// set only by providers that use PKCE. Empty means absent.
type AuthorizationContext struct {
	State        string
	CodeVerifier string
}

// Provider is the contract a concrete OAuth provider implements. Providers
// return identity facts only; user provisioning, linking and session
// management stay in the coordinator.
type Provider interface {
	// ID returns the provider identifier used in login paths (e.g. "github").
	ID() string

	// CreateAuthorizationURL returns the authorization URL the browser is
	// redirected to, together with the flow context to persist in cookies.
	CreateAuthorizationURL(ctx context.Context) (string, AuthorizationContext, error)

	// ValidateCallback validates the callback query against the cookie-held
	// flow context, exchanges the code and fetches the normalized profile.
	// A rejected flow (missing or mismatched state, invalid grant) returns
	// (nil, nil); only unexpected transport or protocol failures return an
	// error.
	ValidateCallback(ctx context.Context, query map[string]string, flow AuthorizationContext) (*ProviderUser, error)
}

// GenerateState generates a cryptographically secure random CSRF state token.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
