package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/roomeasy-api/internal/model"
	"github.com/yourorg/roomeasy-api/internal/recommend"
	"github.com/yourorg/roomeasy-api/internal/session"
)

type HomeDeps struct {
	Recommender *recommend.Service
	Sessions    *session.Manager
}

type homeResponse struct {
	recommend.Result
	User  *viewer       `json:"user,omitempty"`
	Flash []model.Flash `json:"flash"`
}

type viewer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func viewerOf(sess model.ViewerSession) *viewer {
	if !sess.Authenticated() {
		return nil
	}
	return &viewer{ID: sess.UserID, Email: sess.Email}
}

func RegisterHome(r chi.Router, d HomeDeps) {
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		sess := session.From(req)
		flash := sess.TakeFlash()

		res, sess := d.Recommender.Home(req.Context(), req.URL.Query().Get("q"), sess)
		saveSession(w, req, d.Sessions, sess)

		if flash == nil {
			flash = []model.Flash{}
		}
		render.JSON(w, req, homeResponse{Result: res, User: viewerOf(sess), Flash: flash})
	})
}
