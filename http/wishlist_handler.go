package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/roomeasy-api/internal/auth"
	"github.com/yourorg/roomeasy-api/internal/session"
	"github.com/yourorg/roomeasy-api/internal/store"
)

type WishlistDeps struct {
	Store store.Store
}

func RegisterWishlist(r chi.Router, d WishlistDeps) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Post("/rooms/{id}/wishlist", func(w http.ResponseWriter, req *http.Request) {
			id, ok := listingID(req)
			if !ok {
				fail(w, req, http.StatusBadRequest, "invalid_id", "")
				return
			}
			if err := d.Store.AddWishlist(req.Context(), session.From(req).UserID, id); err != nil {
				failErr(w, req, err)
				return
			}
			render.JSON(w, req, map[string]any{"ok": true, "wishlisted": true})
		})

		r.Delete("/rooms/{id}/wishlist", func(w http.ResponseWriter, req *http.Request) {
			id, ok := listingID(req)
			if !ok {
				fail(w, req, http.StatusBadRequest, "invalid_id", "")
				return
			}
			if err := d.Store.RemoveWishlist(req.Context(), session.From(req).UserID, id); err != nil {
				failErr(w, req, err)
				return
			}
			render.JSON(w, req, map[string]any{"ok": true, "wishlisted": false})
		})

		r.Get("/me/wishlist", func(w http.ResponseWriter, req *http.Request) {
			ls, err := d.Store.Wishlist(req.Context(), session.From(req).UserID)
			if err != nil {
				failErr(w, req, err)
				return
			}
			render.JSON(w, req, map[string]any{"count": len(ls), "rooms": nonNilListings(ls)})
		})
	})
}
