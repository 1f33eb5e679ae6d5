package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/roomeasy-api/internal/logger"
	"github.com/yourorg/roomeasy-api/internal/model"
	"github.com/yourorg/roomeasy-api/internal/session"
	"github.com/yourorg/roomeasy-api/internal/store"
	"github.com/yourorg/roomeasy-api/internal/validation"
)

func fail(w http.ResponseWriter, req *http.Request, status int, code, detail string) {
	render.Status(req, status)
	body := map[string]any{"error": code}
	if detail != "" {
		body["detail"] = detail
	}
	render.JSON(w, req, body)
}

// failErr maps store and validation errors to a response. Anything unknown
// is a 500 and is logged.
func failErr(w http.ResponseWriter, req *http.Request, err error) {
	var ve *validation.Error
	switch {
	case errors.As(err, &ve):
		render.Status(req, http.StatusUnprocessableEntity)
		render.JSON(w, req, map[string]any{"error": "validation_failed", "detail": ve.Error(), "fields": ve.Fields})
	case errors.Is(err, store.ErrNotFound):
		fail(w, req, http.StatusNotFound, "not_found", "")
	case errors.Is(err, store.ErrNotOwner):
		fail(w, req, http.StatusForbidden, "not_owner", err.Error())
	case errors.Is(err, store.ErrAlreadyBooked):
		fail(w, req, http.StatusConflict, "already_booked", err.Error())
	case errors.Is(err, store.ErrDuplicate):
		fail(w, req, http.StatusConflict, "duplicate", err.Error())
	case errors.Is(err, store.ErrUnavailable):
		fail(w, req, http.StatusServiceUnavailable, "store_unavailable", "please retry shortly")
	default:
		logger.Ctx(req.Context()).Error().Err(err).Msg("request failed")
		fail(w, req, http.StatusInternalServerError, "internal_error", "")
	}
}

func listingID(req *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	return id, err == nil && id > 0
}

// saveSession persists sess. Failing to save only loses visitor state, so
// the response still goes out.
func saveSession(w http.ResponseWriter, req *http.Request, m *session.Manager, sess model.ViewerSession) {
	if err := m.Save(req.Context(), w, sess); err != nil {
		logger.Ctx(req.Context()).Warn().Err(err).Msg("session save failed")
	}
}
