package auth

import "time"

// Cookie names owned by the engine. The session cookie is long lived; the two
// flow cookies only bridge the gap between login start and callback.
const (
	SessionCookieName      = "session"
	StateCookieName        = "oauth_state"
	CodeVerifierCookieName = "code_verifier"
)

const flowCookieTTL = 10 * time.Minute

// SameSite mirrors the cookie SameSite attribute without tying the core to
// net/http. The framework adapter maps it onto its own representation.
type SameSite string

const (
	SameSiteLax    SameSite = "lax"
	SameSiteStrict SameSite = "strict"
	SameSiteNone   SameSite = "none"
)

// CookieAttributes carries the attributes the caller must apply when writing
// the cookie. MaxAge < 0 instructs the caller to delete the cookie.
type CookieAttributes struct {
	HTTPOnly bool
	Secure   bool
	SameSite SameSite
	Path     string
	MaxAge   int
}

// Cookie is a cookie mutation produced by the engine and applied by the
// framework adapter. The engine never reads raw headers.
type Cookie struct {
	Name       string
	Value      string
	Attributes CookieAttributes
}

// CookiePolicy produces cookie attributes for each cookie class. Secure is a
// deployment-wide switch; everything else is fixed per class.
type CookiePolicy struct {
	Secure          bool
	SessionLifetime time.Duration
}

// SessionCookie builds the long-lived session cookie carrying the session id.
func (p CookiePolicy) SessionCookie(sessionID string) Cookie {
	return Cookie{
		Name:  SessionCookieName,
		Value: sessionID,
		Attributes: CookieAttributes{
			HTTPOnly: true,
			Secure:   p.Secure,
			SameSite: SameSiteLax,
			Path:     "/",
			MaxAge:   int(p.SessionLifetime.Seconds()),
		},
	}
}

// BlankSessionCookie builds the mutation that deletes the session cookie.
func (p CookiePolicy) BlankSessionCookie() Cookie {
	return Cookie{
		Name: SessionCookieName,
		Attributes: CookieAttributes{
			HTTPOnly: true,
			Secure:   p.Secure,
			SameSite: SameSiteLax,
			Path:     "/",
			MaxAge:   -1,
		},
	}
}

// FlowCookie builds a short-lived OAuth flow cookie (state or code verifier).
// SameSite must be none so the cookie survives the cross-site redirect back
// from the provider.
func (p CookiePolicy) FlowCookie(name, value string) Cookie {
	return Cookie{
		Name:  name,
		Value: value,
		Attributes: CookieAttributes{
			HTTPOnly: true,
			Secure:   p.Secure,
			SameSite: SameSiteNone,
			Path:     "/",
			MaxAge:   int(flowCookieTTL.Seconds()),
		},
	}
}
