// Package auth implements a framework-neutral OAuth session core: it
// classifies incoming requests into auth actions, maintains session lifecycle
// (creation, idle refresh, expiry, logout) and coordinates the two-phase
// OAuth authorization-code flow with CSRF state held in cookies.
//
// All durable state lives behind the injected Repository; the engine itself
// is stateless and safe for unlimited concurrent use.
package auth

import (
	"context"
	"net/http"
	"time"
)

// Config carries the engine's construction-time settings. The provider list,
// cookie policy and base path are fixed after construction.
type Config struct {
	Providers []Provider

	// InsecureCookies drops the Secure cookie attribute. Development only;
	// the zero value keeps cookies secure.
	InsecureCookies bool

	// BasePath is the mount point auth routes live under, default "/".
	BasePath string

	SessionLifetime      time.Duration
	SessionIdleThreshold time.Duration
}

// Engine composes the router, session engine and OAuth coordinator into the
// single per-request contract exposed to framework adapters.
type Engine struct {
	repo     Repository
	router   Router
	sessions *SessionEngine
	oauth    *OAuthCoordinator
	policy   CookiePolicy
}

// NewEngine constructs the engine. Construct once at startup and share the
// instance across request handlers.
func NewEngine(repo Repository, cfg Config) *Engine {
	lifetime := cfg.SessionLifetime
	if lifetime == 0 {
		lifetime = 30 * 24 * time.Hour
	}
	policy := CookiePolicy{
		Secure:          !cfg.InsecureCookies,
		SessionLifetime: lifetime,
	}
	sessions := NewSessionEngine(repo, policy, lifetime, cfg.SessionIdleThreshold)

	return &Engine{
		repo:     repo,
		router:   NewRouter(cfg.BasePath),
		sessions: sessions,
		oauth:    NewOAuthCoordinator(cfg.Providers, repo, sessions, policy),
		policy:   policy,
	}
}

// Handle processes one normalized request. It always validates the session
// cookie first, so Result.User reflects the current login state even on auth
// routes, then dispatches on the route classification. A Continue directive
// means the request is not an auth route and the caller proceeds normally.
//
// Expected failures (unknown provider, rejected callback, logout without a
// session) surface as StatusOnly directives; only storage and provider
// transport failures return an error.
func (e *Engine) Handle(ctx context.Context, req Request) (Result, error) {
	user, mutations, err := e.sessions.Validate(ctx, req.Cookies[SessionCookieName])
	if err != nil {
		return Result{}, err
	}

	var out outcome
	switch route := e.router.Classify(req.Method, req.Path); route.Kind {
	case RouteLogin:
		out, err = e.oauth.BeginLogin(ctx, route.ProviderID)
	case RouteCallback:
		out, err = e.oauth.CompleteLogin(ctx, route.ProviderID, req)
	case RouteLogout:
		out, err = e.logout(ctx, req)
	default:
		out = outcome{directive: Continue{}}
	}
	if err != nil {
		return Result{}, err
	}

	return Result{
		User:      user,
		Cookies:   append(mutations, out.cookies...),
		Directive: out.directive,
	}, nil
}

// logout requires an active session: no cookie answers 401 untouched, a
// dangling or expired session answers 401 while clearing the stale cookie,
// and a live session is deleted before redirecting home.
func (e *Engine) logout(ctx context.Context, req Request) (outcome, error) {
	sessionID := req.Cookies[SessionCookieName]
	if sessionID == "" {
		return outcome{directive: StatusOnly{Status: http.StatusUnauthorized}}, nil
	}

	session, user, err := e.repo.GetSessionAndUser(ctx, sessionID)
	if err != nil {
		return outcome{}, err
	}
	clearing := []Cookie{e.policy.BlankSessionCookie()}
	if session == nil || user == nil {
		return outcome{directive: StatusOnly{Status: http.StatusUnauthorized}, cookies: clearing}, nil
	}
	if lifecycleState(session.ExpiresAt, time.Now(), e.sessions.idleThreshold) == stateExpired {
		return outcome{directive: StatusOnly{Status: http.StatusUnauthorized}, cookies: clearing}, nil
	}

	if _, err := e.sessions.Invalidate(ctx, session.ID); err != nil {
		return outcome{}, err
	}
	return outcome{directive: Redirect{Location: "/"}, cookies: clearing}, nil
}
