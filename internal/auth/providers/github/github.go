// Package github implements the GitHub OAuth provider. GitHub's flow uses a
// CSRF state token only; no PKCE.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"gatehouse/internal/auth"
)

const providerID = "github"

// Provider implements auth.Provider against the GitHub REST API.
type Provider struct {
	config     *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

// New creates a GitHub provider with the user:email scope, so the primary
// email can be read even when the profile keeps it private.
func New(clientID, clientSecret string) *Provider {
	return &Provider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     githuboauth.Endpoint,
			Scopes:       []string{"user:email"},
		},
		apiBaseURL: "https://api.github.com",
		httpClient: http.DefaultClient,
	}
}

// ID returns the provider identifier used in login paths.
func (p *Provider) ID() string {
	return providerID
}

// CreateAuthorizationURL generates a fresh state token and builds the consent
// URL carrying it.
func (p *Provider) CreateAuthorizationURL(_ context.Context) (string, auth.AuthorizationContext, error) {
	state, err := auth.GenerateState()
	if err != nil {
		return "", auth.AuthorizationContext{}, fmt.Errorf("generate state: %w", err)
	}
	return p.config.AuthCodeURL(state), auth.AuthorizationContext{State: state}, nil
}

// ValidateCallback checks the returned state against the cookie-held one,
// exchanges the code and fetches the user's profile and primary email. A
// missing or mismatched state and a rejected grant both return (nil, nil).
func (p *Provider) ValidateCallback(ctx context.Context, query map[string]string, flow auth.AuthorizationContext) (*auth.ProviderUser, error) {
	code, state := query["code"], query["state"]
	if code == "" || state == "" || flow.State == "" || state != flow.State {
		return nil, nil
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			// The authorization server rejected the grant (expired or reused
			// code); an authentication failure, not a transport fault.
			return nil, nil
		}
		return nil, fmt.Errorf("github token exchange: %w", err)
	}

	var profile struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := p.getJSON(ctx, token, "/user", &profile); err != nil {
		return nil, fmt.Errorf("github user fetch: %w", err)
	}

	var emails []struct {
		Email    string `json:"email"`
		Verified bool   `json:"verified"`
		Primary  bool   `json:"primary"`
	}
	if err := p.getJSON(ctx, token, "/user/emails", &emails); err != nil {
		return nil, fmt.Errorf("github emails fetch: %w", err)
	}

	user := &auth.ProviderUser{
		ID:           fmt.Sprintf("%d", profile.ID),
		Username:     profile.Login,
		ProfileImage: profile.AvatarURL,
	}
	for _, e := range emails {
		if e.Primary {
			user.Email = e.Email
			user.EmailVerified = e.Verified
			break
		}
	}
	return user, nil
}

func (p *Provider) getJSON(ctx context.Context, token *oauth2.Token, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
