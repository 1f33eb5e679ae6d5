package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/roomeasy-api/internal/auth"
	"github.com/yourorg/roomeasy-api/internal/session"
)

type AuthDeps struct {
	Auth     *auth.Service
	Sessions *session.Manager
}

func RegisterAuth(r chi.Router, d AuthDeps) {
	r.Post("/signup", func(w http.ResponseWriter, req *http.Request) {
		in, err := decodeCredentials(req)
		if err != nil {
			fail(w, req, http.StatusBadRequest, "invalid_body", err.Error())
			return
		}
		u, err := d.Auth.SignUp(req.Context(), in)
		if errors.Is(err, auth.ErrEmailTaken) {
			fail(w, req, http.StatusConflict, "email_taken", err.Error())
			return
		}
		if err != nil {
			failErr(w, req, err)
			return
		}
		sess := session.From(req)
		sess.AddFlash("success", "Signup successful! Please log in.")
		saveSession(w, req, d.Sessions, sess)

		render.Status(req, http.StatusCreated)
		render.JSON(w, req, map[string]any{"ok": true, "user": u})
	})

	r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
		in, err := decodeCredentials(req)
		if err != nil {
			fail(w, req, http.StatusBadRequest, "invalid_body", err.Error())
			return
		}
		u, err := d.Auth.Login(req.Context(), in.Email, in.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			fail(w, req, http.StatusUnauthorized, "invalid_credentials", err.Error())
			return
		}
		if err != nil {
			failErr(w, req, err)
			return
		}
		sess := session.From(req)
		sess.UserID, sess.Email = u.ID, u.Email
		sess.AddFlash("success", "Logged in successfully!")
		if _, err := d.Sessions.Renew(req.Context(), w, sess); err != nil {
			failErr(w, req, err)
			return
		}
		render.JSON(w, req, map[string]any{"ok": true, "user": u})
	})

	r.Post("/logout", func(w http.ResponseWriter, req *http.Request) {
		if err := d.Sessions.Clear(req.Context(), w, session.From(req)); err != nil {
			failErr(w, req, err)
			return
		}
		render.JSON(w, req, map[string]any{"ok": true})
	})
}
