package auth

import (
	"net/http"

	"github.com/sakif/creatorverse/internal/session"
)

// RequireUser lets a request through only when session.Manager.Middleware
// resolved it to a creator account. Anonymous callers get 401; admins get
// 403, because the admin and user areas are separate.
func RequireUser(next http.Handler) http.Handler {
	return requireRole(session.RoleUser, next)
}

// RequireAdmin is RequireUser for the admin area.
func RequireAdmin(next http.Handler) http.Handler {
	return requireRole(session.RoleAdmin, next)
}

func requireRole(role session.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := session.FromContext(r.Context())
		switch {
		case p.IsAnonymous():
			writeAuthError(w, http.StatusUnauthorized, `{"error":"unauthorized","message":"Please log in first."}`)
			return
		case p.Role != role:
			writeAuthError(w, http.StatusForbidden, `{"error":"forbidden","message":"You do not have access to this area."}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
