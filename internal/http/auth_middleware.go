package http

import (
	"context"
	"log/slog"
	"net/http"

	"gatehouse/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey contextKey = "user"

// UserFromContext extracts the authenticated user from the request context.
// Returns nil if the request carries no valid session.
func UserFromContext(ctx context.Context) *auth.User {
	user, _ := ctx.Value(userContextKey).(*auth.User)
	return user
}

// newAuthMiddleware adapts the auth engine to net/http: it builds the
// normalized request, runs the engine once, applies the resulting cookie
// mutations and either answers the request (auth routes) or passes it on with
// the current user in the context.
func newAuthMiddleware(engine *auth.Engine, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := engine.Handle(r.Context(), normalizeRequest(r))
			if err != nil {
				logger.Error("auth engine failure", "method", r.Method, "path", r.URL.Path, "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			for _, c := range result.Cookies {
				http.SetCookie(w, toHTTPCookie(c))
			}

			switch directive := result.Directive.(type) {
			case auth.Redirect:
				http.Redirect(w, r, directive.Location, http.StatusFound)
			case auth.StatusOnly:
				w.WriteHeader(directive.Status)
			default:
				ctx := r.Context()
				if result.User != nil {
					ctx = context.WithValue(ctx, userContextKey, result.User)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

// normalizeRequest flattens the request into the engine's framework-neutral
// shape. Query values are last-wins per key.
func normalizeRequest(r *http.Request) auth.Request {
	query := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			query[key] = values[len(values)-1]
		}
	}

	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		cookies[c.Name] = c.Value
	}

	return auth.Request{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   query,
		Cookies: cookies,
	}
}

func toHTTPCookie(c auth.Cookie) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Attributes.Path,
		MaxAge:   c.Attributes.MaxAge,
		HttpOnly: c.Attributes.HTTPOnly,
		Secure:   c.Attributes.Secure,
		SameSite: toHTTPSameSite(c.Attributes.SameSite),
	}
}

func toHTTPSameSite(s auth.SameSite) http.SameSite {
	switch s {
	case auth.SameSiteStrict:
		return http.SameSiteStrictMode
	case auth.SameSiteNone:
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
