package auth

import "strings"

// RouteKind discriminates the auth routes the engine owns.
type RouteKind int

const (
	RouteNone RouteKind = iota
	RouteLogin
	RouteCallback
	RouteLogout
)

// Route is the classification of an incoming request. ProviderID is set for
// login and callback routes only.
type Route struct {
	Kind       RouteKind
	ProviderID string
}

// Router maps (method, path) pairs onto auth routes. It is pure and carries no
// per-request state; basePath is the deployment mount point stripped before
// classification.
type Router struct {
	basePath string
}

// NewRouter builds a Router for the given base path. An empty base path is
// treated as "/".
func NewRouter(basePath string) Router {
	return Router{basePath: NormalizePath(basePath)}
}

// Classify resolves the request against the configured base path and matches
// the auth routes:
//
//	GET  /login/{provider}           login start
//	GET  /login/{provider}/callback  OAuth callback
//	POST /login/{provider}/callback  OAuth callback (form post response mode)
//	POST /logout                     logout
//
// Requests outside the base path fail closed to RouteNone.
func (r Router) Classify(method, path string) Route {
	resolved, ok := r.resolve(path)
	if !ok {
		return Route{Kind: RouteNone}
	}

	segments := strings.Split(resolved, "/")[1:]
	switch {
	case method == "GET" && len(segments) == 2 && segments[0] == "login" && segments[1] != "":
		return Route{Kind: RouteLogin, ProviderID: segments[1]}
	case (method == "GET" || method == "POST") && len(segments) == 3 &&
		segments[0] == "login" && segments[1] != "" && segments[2] == "callback":
		return Route{Kind: RouteCallback, ProviderID: segments[1]}
	case method == "POST" && len(segments) == 1 && segments[0] == "logout":
		return Route{Kind: RouteLogout}
	}
	return Route{Kind: RouteNone}
}

// resolve strips the base path prefix from the normalized request path. A path
// that does not live under the base path yields ok=false.
func (r Router) resolve(path string) (string, bool) {
	normalized := NormalizePath(path)
	if r.basePath == "/" {
		return normalized, true
	}
	if normalized == r.basePath {
		return "/", true
	}
	if strings.HasPrefix(normalized, r.basePath+"/") {
		return normalized[len(r.basePath):], true
	}
	return "", false
}

// NormalizePath collapses duplicate and trailing slashes: segments are split
// on "/", empty segments dropped, and the remainder rejoined under a single
// leading "/". The empty path normalizes to "/". Idempotent.
func NormalizePath(path string) string {
	segments := strings.Split(path, "/")
	kept := segments[:0]
	for _, s := range segments {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return "/" + strings.Join(kept, "/")
}
