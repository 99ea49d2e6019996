package google

import (
	"context"
	"net/url"
	"testing"

	"golang.org/x/oauth2"

	"gatehouse/internal/auth"
)

func newOfflineProvider() *Provider {
	// Constructed directly to avoid OIDC discovery; exercises the pure parts.
	return &Provider{
		config: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "https://example.com/login/google/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
				TokenURL: "https://oauth2.googleapis.com/token",
			},
			Scopes: []string{"openid", "email", "profile"},
		},
	}
}

func TestCreateAuthorizationURLCarriesStateAndChallenge(t *testing.T) {
	provider := newOfflineProvider()

	authURL, flow, err := provider.CreateAuthorizationURL(context.Background())
	if err != nil {
		t.Fatalf("CreateAuthorizationURL returned error: %v", err)
	}
	if flow.State == "" {
		t.Fatal("expected a state token")
	}
	if flow.CodeVerifier == "" {
		t.Fatal("expected a PKCE verifier")
	}

	parsed, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("invalid authorization URL %q: %v", authURL, err)
	}
	query := parsed.Query()
	if got := query.Get("state"); got != flow.State {
		t.Fatalf("expected state %q in URL, got %q", flow.State, got)
	}
	if query.Get("code_challenge") == "" || query.Get("code_challenge_method") != "S256" {
		t.Fatalf("expected S256 challenge parameters, got %v", query)
	}
	if got := query.Get("redirect_uri"); got != provider.config.RedirectURL {
		t.Fatalf("unexpected redirect uri %q", got)
	}
}

func TestCreateAuthorizationURLStatesAreUnique(t *testing.T) {
	provider := newOfflineProvider()

	_, first, err := provider.CreateAuthorizationURL(context.Background())
	if err != nil {
		t.Fatalf("CreateAuthorizationURL returned error: %v", err)
	}
	_, second, err := provider.CreateAuthorizationURL(context.Background())
	if err != nil {
		t.Fatalf("CreateAuthorizationURL returned error: %v", err)
	}
	if first.State == second.State || first.CodeVerifier == second.CodeVerifier {
		t.Fatal("expected distinct state and verifier per flow")
	}
}

func TestValidateCallbackRejectsBadFlows(t *testing.T) {
	provider := newOfflineProvider()

	cases := []struct {
		name  string
		query map[string]string
		flow  auth.AuthorizationContext
	}{
		{"missing code", map[string]string{"state": "A"}, auth.AuthorizationContext{State: "A", CodeVerifier: "v"}},
		{"state mismatch", map[string]string{"code": "c", "state": "A"}, auth.AuthorizationContext{State: "B", CodeVerifier: "v"}},
		{"missing cookie state", map[string]string{"code": "c", "state": "A"}, auth.AuthorizationContext{CodeVerifier: "v"}},
		{"missing verifier", map[string]string{"code": "c", "state": "A"}, auth.AuthorizationContext{State: "A"}},
	}

	for _, tc := range cases {
		user, err := provider.ValidateCallback(context.Background(), tc.query, tc.flow)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if user != nil {
			t.Fatalf("%s: expected rejection, got %+v", tc.name, user)
		}
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(context.Background(), "", "secret", "https://example.com/cb"); err == nil {
		t.Fatal("expected error for missing client id")
	}
	if _, err := New(context.Background(), "id", "", "https://example.com/cb"); err == nil {
		t.Fatal("expected error for missing client secret")
	}
	if _, err := New(context.Background(), "id", "secret", ""); err == nil {
		t.Fatal("expected error for missing redirect URL")
	}
}
