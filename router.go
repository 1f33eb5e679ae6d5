package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	httpapi "github.com/yourorg/roomeasy-api/http"
	"github.com/yourorg/roomeasy-api/internal/auth"
	"github.com/yourorg/roomeasy-api/internal/events"
	"github.com/yourorg/roomeasy-api/internal/logger"
	"github.com/yourorg/roomeasy-api/internal/metrics"
	"github.com/yourorg/roomeasy-api/internal/recommend"
	"github.com/yourorg/roomeasy-api/internal/session"
	"github.com/yourorg/roomeasy-api/internal/store"
)

type RouterDeps struct {
	Store       store.Store
	Pub         events.Publisher
	Sessions    *session.Manager
	Auth        *auth.Service
	Recommender *recommend.Service
	CORSOrigins []string
	RateLimit   int // per IP per minute, 0 disables
}

func BuildRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(logger.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if d.RateLimit > 0 {
		r.Use(httprate.LimitByIP(d.RateLimit, 1*time.Minute))
	}
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"ok":true}`)) })
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(d.Sessions.Middleware)
		httpapi.RegisterHome(r, httpapi.HomeDeps{Recommender: d.Recommender, Sessions: d.Sessions})
		httpapi.RegisterAuth(r, httpapi.AuthDeps{Auth: d.Auth, Sessions: d.Sessions})
		httpapi.RegisterRooms(r, httpapi.RoomsDeps{Store: d.Store, Pub: d.Pub, Sessions: d.Sessions})
		httpapi.RegisterBookings(r, httpapi.BookingsDeps{Store: d.Store, Pub: d.Pub, Sessions: d.Sessions})
		httpapi.RegisterWishlist(r, httpapi.WishlistDeps{Store: d.Store})
	})

	return r
}
