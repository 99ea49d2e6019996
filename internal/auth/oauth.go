package auth

import (
	"context"
	"fmt"
	"net/http"
)

// OAuthCoordinator runs the two-phase authorization-code protocol. The two
// phases are correlated only through the flow cookies; there is no
// server-side pending-flow table.
type OAuthCoordinator struct {
	providers map[string]Provider
	repo      Repository
	sessions  *SessionEngine
	cookies   CookiePolicy
}

// NewOAuthCoordinator creates a coordinator over the given providers.
func NewOAuthCoordinator(providers []Provider, repo Repository, sessions *SessionEngine, cookies CookiePolicy) *OAuthCoordinator {
	byID := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byID[p.ID()] = p
	}
	return &OAuthCoordinator{
		providers: byID,
		repo:      repo,
		sessions:  sessions,
		cookies:   cookies,
	}
}

// BeginLogin starts the flow for a provider: it obtains the authorization URL
// and stores the CSRF state (and PKCE verifier, when the provider uses one)
// in short-lived cookies before redirecting the browser to the provider.
func (c *OAuthCoordinator) BeginLogin(ctx context.Context, providerID string) (outcome, error) {
	provider, ok := c.providers[providerID]
	if !ok {
		return outcome{directive: StatusOnly{Status: http.StatusNotFound}}, nil
	}

	authURL, flow, err := provider.CreateAuthorizationURL(ctx)
	if err != nil {
		return outcome{}, fmt.Errorf("authorization url for %q: %w", providerID, err)
	}

	var cookies []Cookie
	if flow.State != "" {
		cookies = append(cookies, c.cookies.FlowCookie(StateCookieName, flow.State))
	}
	if flow.CodeVerifier != "" {
		cookies = append(cookies, c.cookies.FlowCookie(CodeVerifierCookieName, flow.CodeVerifier))
	}
	return outcome{directive: Redirect{Location: authURL}, cookies: cookies}, nil
}

// CompleteLogin finishes the flow: the provider validates the callback query
// against the cookie-held context and returns the normalized profile, which
// is then mapped to a local user (provisioned on first login) and a fresh
// session.
//
// A rejected flow answers 400 without cookies; the stale flow cookies expire
// on their own.
func (c *OAuthCoordinator) CompleteLogin(ctx context.Context, providerID string, req Request) (outcome, error) {
	provider, ok := c.providers[providerID]
	if !ok {
		return outcome{directive: StatusOnly{Status: http.StatusBadRequest}}, nil
	}

	flow := AuthorizationContext{
		State:        req.Cookies[StateCookieName],
		CodeVerifier: req.Cookies[CodeVerifierCookieName],
	}

	providerUser, err := provider.ValidateCallback(ctx, req.Query, flow)
	if err != nil {
		return outcome{}, fmt.Errorf("callback validation for %q: %w", providerID, err)
	}
	if providerUser == nil {
		return outcome{directive: StatusOnly{Status: http.StatusBadRequest}}, nil
	}

	oauthID := OAuthIDFor(provider.ID(), providerUser.ID)
	user, err := c.repo.GetUserByOAuthID(ctx, oauthID)
	if err != nil {
		return outcome{}, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		user, err = c.provisionUser(ctx, oauthID, providerUser)
		if err != nil {
			return outcome{}, err
		}
	}

	session, err := c.sessions.Create(ctx, user.ID)
	if err != nil {
		return outcome{}, err
	}
	return outcome{
		directive: Redirect{Location: "/"},
		cookies:   []Cookie{c.cookies.SessionCookie(session.ID)},
	}, nil
}

// provisionUser creates the local user record on a provider identity's first
// login. Each oauth id maps to at most one user; there is no account linking
// across providers.
func (c *OAuthCoordinator) provisionUser(ctx context.Context, oauthID string, providerUser *ProviderUser) (*User, error) {
	id, err := NewToken(userIDLength)
	if err != nil {
		return nil, err
	}

	user := User{
		ID:            id,
		Username:      providerUser.Username,
		Email:         providerUser.Email,
		EmailVerified: providerUser.EmailVerified,
		ProfileImage:  providerUser.ProfileImage,
		OAuthID:       oauthID,
	}
	if err := c.repo.SetUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}
