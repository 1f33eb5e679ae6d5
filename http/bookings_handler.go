package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/roomeasy-api/internal/auth"
	"github.com/yourorg/roomeasy-api/internal/events"
	"github.com/yourorg/roomeasy-api/internal/metrics"
	"github.com/yourorg/roomeasy-api/internal/model"
	"github.com/yourorg/roomeasy-api/internal/session"
	"github.com/yourorg/roomeasy-api/internal/store"
	"github.com/yourorg/roomeasy-api/internal/validation"
)

type BookingsDeps struct {
	Store    store.Store
	Pub      events.Publisher
	Sessions *session.Manager
}

func RegisterBookings(r chi.Router, d BookingsDeps) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Post("/rooms/{id}/book", func(w http.ResponseWriter, req *http.Request) {
			id, ok := listingID(req)
			if !ok {
				fail(w, req, http.StatusBadRequest, "invalid_id", "")
				return
			}
			in, err := decodeBooking(req)
			if err != nil {
				fail(w, req, http.StatusBadRequest, "invalid_body", err.Error())
				return
			}
			if err := validation.Struct(in); err != nil {
				failErr(w, req, err)
				return
			}

			sess := session.From(req)
			b := model.Booking{UserID: sess.UserID, ListingID: id, Kind: model.BookingKind(in.Kind)}
			if in.Amount != nil {
				b.AmountPaid = *in.Amount
			}
			b, err = d.Store.CreateBooking(req.Context(), b)
			if err != nil {
				failErr(w, req, err)
				return
			}
			metrics.Bookings.WithLabelValues(string(b.Kind)).Inc()
			if b.Kind.Reserves() {
				d.Pub.PublishListingChanged(req.Context(), events.ListingChanged{ListingID: id, Kind: events.ListingBooked})
			}
			sess.AddFlash("success", fmt.Sprintf("Payment Successful! You selected: %s", b.Kind))
			saveSession(w, req, d.Sessions, sess)

			render.Status(req, http.StatusCreated)
			render.JSON(w, req, b)
		})

		r.Get("/me/bookings", func(w http.ResponseWriter, req *http.Request) {
			bs, err := d.Store.BookingsByUser(req.Context(), session.From(req).UserID)
			if err != nil {
				failErr(w, req, err)
				return
			}
			if bs == nil {
				bs = []model.Booking{}
			}
			render.JSON(w, req, map[string]any{"count": len(bs), "bookings": bs})
		})
	})
}
