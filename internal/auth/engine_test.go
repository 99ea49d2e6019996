package auth

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func newTestEngine(repo Repository, providers ...Provider) *Engine {
	return NewEngine(repo, Config{
		Providers:            providers,
		SessionLifetime:      testLifetime,
		SessionIdleThreshold: testIdleThreshold,
	})
}

func TestHandleContinueWithoutSession(t *testing.T) {
	engine := newTestEngine(&repoStub{})

	result, err := engine.Handle(context.Background(), Request{Method: "GET", Path: "/some/page"})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if _, ok := result.Directive.(Continue); !ok {
		t.Fatalf("expected Continue, got %+v", result.Directive)
	}
	if result.User != nil || len(result.Cookies) != 0 {
		t.Fatalf("expected anonymous pass-through, got %+v", result)
	}
}

func TestHandleContinuePopulatesUser(t *testing.T) {
	repo := &repoStub{
		getSessionAndUser: func(ctx context.Context, sessionID string) (*Session, *User, error) {
			return &Session{ID: sessionID, UserID: "user-1", ExpiresAt: time.Now().Add(20 * 24 * time.Hour)},
				&User{ID: "user-1", Username: "alice"},
				nil
		},
	}
	engine := newTestEngine(repo)

	req := Request{
		Method:  "GET",
		Path:    "/dashboard",
		Cookies: map[string]string{SessionCookieName: "sess-1"},
	}
	result, err := engine.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if _, ok := result.Directive.(Continue); !ok {
		t.Fatalf("expected Continue, got %+v", result.Directive)
	}
	if result.User == nil || result.User.Username != "alice" {
		t.Fatalf("expected current user on a normal request, got %+v", result.User)
	}
}

func TestHandleLoginRoute(t *testing.T) {
	provider := &providerStub{
		id:      "github",
		authURL: "https://example.com/authorize",
		flow:    AuthorizationContext{State: "s1"},
	}
	engine := newTestEngine(&repoStub{}, provider)

	result, err := engine.Handle(context.Background(), Request{Method: "GET", Path: "/login/github"})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	redirect, ok := result.Directive.(Redirect)
	if !ok || redirect.Location != provider.authURL {
		t.Fatalf("expected redirect to provider, got %+v", result.Directive)
	}
	if len(result.Cookies) != 1 || result.Cookies[0].Name != StateCookieName {
		t.Fatalf("expected state cookie, got %+v", result.Cookies)
	}
}

func TestHandleCallbackRoute(t *testing.T) {
	provider := &providerStub{
		id:               "github",
		validateCallback: stateCheckingCallback(&ProviderUser{ID: "42", Username: "octocat"}),
	}
	engine := newTestEngine(&repoStub{}, provider)

	req := Request{
		Method:  "GET",
		Path:    "/login/github/callback",
		Query:   map[string]string{"code": "c1", "state": "s1"},
		Cookies: map[string]string{StateCookieName: "s1"},
	}
	result, err := engine.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if redirect, ok := result.Directive.(Redirect); !ok || redirect.Location != "/" {
		t.Fatalf("expected post-login redirect, got %+v", result.Directive)
	}
	if len(result.Cookies) != 1 || result.Cookies[0].Name != SessionCookieName {
		t.Fatalf("expected session cookie, got %+v", result.Cookies)
	}
}

func TestHandleLogoutWithoutCookie(t *testing.T) {
	storeCalls := 0
	repo := &repoStub{
		getSessionAndUser: func(ctx context.Context, sessionID string) (*Session, *User, error) {
			storeCalls++
			return nil, nil, nil
		},
		deleteSession: func(ctx context.Context, sessionID string) error {
			storeCalls++
			return nil
		},
	}
	engine := newTestEngine(repo)

	result, err := engine.Handle(context.Background(), Request{Method: "POST", Path: "/logout"})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	status, ok := result.Directive.(StatusOnly)
	if !ok || status.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", result.Directive)
	}
	if len(result.Cookies) != 0 {
		t.Fatalf("expected no cookies, got %+v", result.Cookies)
	}
	if storeCalls != 0 {
		t.Fatalf("expected no store calls, got %d", storeCalls)
	}
}

func TestHandleLogoutDanglingSession(t *testing.T) {
	deleted := 0
	repo := &repoStub{
		deleteSession: func(ctx context.Context, sessionID string) error {
			deleted++
			return nil
		},
	}
	engine := newTestEngine(repo)

	req := Request{
		Method:  "POST",
		Path:    "/logout",
		Cookies: map[string]string{SessionCookieName: "gone"},
	}
	result, err := engine.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	status, ok := result.Directive.(StatusOnly)
	if !ok || status.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", result.Directive)
	}
	// The stale client cookie is still cleared.
	if len(result.Cookies) != 1 || result.Cookies[0].Attributes.MaxAge >= 0 {
		t.Fatalf("expected a clearing cookie, got %+v", result.Cookies)
	}
	if deleted != 0 {
		t.Fatal("expected no delete for a dangling session")
	}
}

func TestHandleLogoutActiveSession(t *testing.T) {
	var deletedID string
	repo := &repoStub{
		getSessionAndUser: func(ctx context.Context, sessionID string) (*Session, *User, error) {
			return &Session{ID: sessionID, UserID: "user-1", ExpiresAt: time.Now().Add(20 * 24 * time.Hour)},
				&User{ID: "user-1"},
				nil
		},
		deleteSession: func(ctx context.Context, sessionID string) error {
			deletedID = sessionID
			return nil
		},
	}
	engine := newTestEngine(repo)

	req := Request{
		Method:  "POST",
		Path:    "/logout",
		Cookies: map[string]string{SessionCookieName: "sess-1"},
	}
	result, err := engine.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if redirect, ok := result.Directive.(Redirect); !ok || redirect.Location != "/" {
		t.Fatalf("expected redirect home, got %+v", result.Directive)
	}
	if deletedID != "sess-1" {
		t.Fatalf("expected session deletion, got %q", deletedID)
	}
	if len(result.Cookies) != 1 || result.Cookies[0].Attributes.MaxAge >= 0 {
		t.Fatalf("expected a clearing cookie, got %+v", result.Cookies)
	}
}

func TestHandleUnknownProviderLogin(t *testing.T) {
	engine := newTestEngine(&repoStub{})

	result, err := engine.Handle(context.Background(), Request{Method: "GET", Path: "/login/unknown"})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	status, ok := result.Directive.(StatusOnly)
	if !ok || status.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %+v", result.Directive)
	}
}

func TestHandleMergesSessionMutationsFirst(t *testing.T) {
	// An idle session refreshed during an auth route keeps its reissued
	// cookie ahead of the route's own cookies.
	provider := &providerStub{
		id:      "github",
		authURL: "https://example.com/authorize",
		flow:    AuthorizationContext{State: "s1"},
	}
	repo := &repoStub{
		getSessionAndUser: func(ctx context.Context, sessionID string) (*Session, *User, error) {
			return &Session{ID: sessionID, UserID: "user-1", ExpiresAt: time.Now().Add(10 * 24 * time.Hour)},
				&User{ID: "user-1"},
				nil
		},
	}
	engine := newTestEngine(repo, provider)

	req := Request{
		Method:  "GET",
		Path:    "/login/github",
		Cookies: map[string]string{SessionCookieName: "sess-idle"},
	}
	result, err := engine.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if len(result.Cookies) != 2 {
		t.Fatalf("expected refreshed session cookie plus state cookie, got %+v", result.Cookies)
	}
	if result.Cookies[0].Name != SessionCookieName || result.Cookies[1].Name != StateCookieName {
		t.Fatalf("expected session mutation first, got %+v", result.Cookies)
	}
}
