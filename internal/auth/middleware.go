package auth

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/yourorg/roomeasy-api/internal/session"
)

// RequireUser rejects anonymous sessions. It must run after the session
// middleware.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.From(r).Authenticated() {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "unauthorized", "detail": "please log in first"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
