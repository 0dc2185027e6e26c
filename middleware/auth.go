package middleware

import (
	"context"
	"net/http"

	"coderoom/core"

	"github.com/go-chi/render"
)

type contextKey string

const adminContextKey = contextKey("admin")

// SessionParser verifies an admin session token. Implemented by the admin
// session manager.
type SessionParser interface {
	Parse(token string) (core.AdminUser, error)
}

// AdminAuth guards admin routes. It reads the session cookie, verifies it and
// stores the admin identity in the request context.
func AdminAuth(cookieName string, sessions SessionParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]string{"error": "Admin session required"})
				return
			}

			admin, err := sessions.Parse(cookie.Value)
			if err != nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]string{"error": "Invalid session"})
				return
			}

			ctx := context.WithValue(r.Context(), adminContextKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminFrom extracts the authenticated admin from the request context.
func AdminFrom(ctx context.Context) (core.AdminUser, bool) {
	admin, ok := ctx.Value(adminContextKey).(core.AdminUser)
	return admin, ok
}
