package http

import (
	"net/http"

	"gatehouse/internal/auth"
)

type userPayload struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	ProfileImage  string `json:"profileImage,omitempty"`
}

func toUserPayload(u *auth.User) userPayload {
	return userPayload{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		ProfileImage:  u.ProfileImage,
	}
}

// handleMe returns the authenticated user's profile, or 401 when the request
// carries no valid session.
func handleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, toUserPayload(user))
}

// handleIndex reports the login state, a minimal landing surface for the demo
// deployment.
func handleIndex(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          toUserPayload(user),
	})
}
