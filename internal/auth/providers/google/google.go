// Package google implements the Google OAuth provider via OpenID Connect.
// The flow uses both a CSRF state token and a PKCE code verifier.
package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"gatehouse/internal/auth"
)

const providerID = "google"

// Provider implements auth.Provider using Google's OIDC discovery document
// and ID-token verification.
type Provider struct {
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// New creates a Google provider. The redirect URL must match the callback
// route registered in the Google console, e.g.
// https://example.com/login/google/callback.
func New(ctx context.Context, clientID, clientSecret, redirectURL string) (*Provider, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     oidcProvider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: oidcProvider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// ID returns the provider identifier used in login paths.
func (p *Provider) ID() string {
	return providerID
}

// CreateAuthorizationURL generates the state token and PKCE verifier and
// builds the consent URL carrying the S256 challenge.
func (p *Provider) CreateAuthorizationURL(_ context.Context) (string, auth.AuthorizationContext, error) {
	state, err := auth.GenerateState()
	if err != nil {
		return "", auth.AuthorizationContext{}, fmt.Errorf("generate state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	url := p.config.AuthCodeURL(
		state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return url, auth.AuthorizationContext{State: state, CodeVerifier: verifier}, nil
}

// ValidateCallback checks the returned state, exchanges the code with the
// PKCE verifier and verifies the ID token before extracting the profile.
func (p *Provider) ValidateCallback(ctx context.Context, query map[string]string, flow auth.AuthorizationContext) (*auth.ProviderUser, error) {
	code, state := query["code"], query["state"]
	if code == "" || state == "" || flow.State == "" || state != flow.State {
		return nil, nil
	}
	if flow.CodeVerifier == "" {
		return nil, nil
	}

	token, err := p.config.Exchange(ctx, code, oauth2.VerifierOption(flow.CodeVerifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("google token exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("google response missing id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.Sub == "" {
		return nil, errors.New("google id_token missing sub claim")
	}

	return &auth.ProviderUser{
		ID:            claims.Sub,
		Username:      claims.Name,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		ProfileImage:  claims.Picture,
	}, nil
}
