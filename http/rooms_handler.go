package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/roomeasy-api/internal/auth"
	"github.com/yourorg/roomeasy-api/internal/events"
	"github.com/yourorg/roomeasy-api/internal/logger"
	"github.com/yourorg/roomeasy-api/internal/model"
	"github.com/yourorg/roomeasy-api/internal/recommend"
	"github.com/yourorg/roomeasy-api/internal/session"
	"github.com/yourorg/roomeasy-api/internal/store"
	"github.com/yourorg/roomeasy-api/internal/validation"
)

type RoomsDeps struct {
	Store    store.Store
	Pub      events.Publisher
	Sessions *session.Manager
}

type roomDetail struct {
	Room       model.Listing `json:"room"`
	Quote      model.Quote   `json:"quote"`
	Wishlisted bool          `json:"wishlisted"`
}

func RegisterRooms(r chi.Router, d RoomsDeps) {
	r.Get("/rooms/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, ok := listingID(req)
		if !ok {
			fail(w, req, http.StatusBadRequest, "invalid_id", "")
			return
		}
		l, err := d.Store.GetListing(req.Context(), id)
		if err != nil {
			failErr(w, req, err)
			return
		}
		sess := recommend.RecordView(session.From(req), l.ID)
		saveSession(w, req, d.Sessions, sess)

		out := roomDetail{Room: l, Quote: model.QuoteFor(l)}
		if sess.Authenticated() {
			liked, err := d.Store.IsWishlisted(req.Context(), sess.UserID, l.ID)
			if err != nil {
				logger.Ctx(req.Context()).Warn().Err(err).Int64("listing_id", l.ID).Msg("wishlist lookup failed")
			}
			out.Wishlisted = liked
		}
		render.JSON(w, req, out)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Post("/rooms", func(w http.ResponseWriter, req *http.Request) {
			in, err := decodeListing(req)
			if err != nil {
				fail(w, req, http.StatusBadRequest, "invalid_body", err.Error())
				return
			}
			if err := validation.Struct(in); err != nil {
				failErr(w, req, err)
				return
			}
			sess := session.From(req)
			l, err := d.Store.CreateListing(req.Context(), in.listing(sess.UserID))
			if err != nil {
				failErr(w, req, err)
				return
			}
			d.Pub.PublishListingChanged(req.Context(), events.ListingChanged{ListingID: l.ID, Kind: events.ListingCreated})
			sess.AddFlash("success", "Room uploaded successfully!")
			saveSession(w, req, d.Sessions, sess)

			render.Status(req, http.StatusCreated)
			render.JSON(w, req, l)
		})

		r.Put("/rooms/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, ok := listingID(req)
			if !ok {
				fail(w, req, http.StatusBadRequest, "invalid_id", "")
				return
			}
			in, err := decodeListing(req)
			if err != nil {
				fail(w, req, http.StatusBadRequest, "invalid_body", err.Error())
				return
			}
			if err := validation.Struct(in); err != nil {
				failErr(w, req, err)
				return
			}
			owner := session.From(req).UserID
			l := in.listing(owner)
			l.ID = id
			l, err = d.Store.UpdateListing(req.Context(), owner, l)
			if err != nil {
				failErr(w, req, err)
				return
			}
			d.Pub.PublishListingChanged(req.Context(), events.ListingChanged{ListingID: id, Kind: events.ListingUpdated})
			render.JSON(w, req, l)
		})

		r.Delete("/rooms/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, ok := listingID(req)
			if !ok {
				fail(w, req, http.StatusBadRequest, "invalid_id", "")
				return
			}
			if err := d.Store.DeleteListing(req.Context(), session.From(req).UserID, id); err != nil {
				failErr(w, req, err)
				return
			}
			d.Pub.PublishListingChanged(req.Context(), events.ListingChanged{ListingID: id, Kind: events.ListingDeleted})
			render.JSON(w, req, map[string]any{"ok": true})
		})

		r.Get("/me/rooms", func(w http.ResponseWriter, req *http.Request) {
			ls, err := d.Store.ListingsByOwner(req.Context(), session.From(req).UserID)
			if err != nil {
				failErr(w, req, err)
				return
			}
			render.JSON(w, req, map[string]any{"count": len(ls), "rooms": nonNilListings(ls)})
		})
	})
}

func nonNilListings(ls []model.Listing) []model.Listing {
	if ls == nil {
		return []model.Listing{}
	}
	return ls
}
