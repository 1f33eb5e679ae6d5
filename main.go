package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourorg/roomeasy-api/internal/auth"
	"github.com/yourorg/roomeasy-api/internal/backend"
	"github.com/yourorg/roomeasy-api/internal/catalog"
	"github.com/yourorg/roomeasy-api/internal/config"
	"github.com/yourorg/roomeasy-api/internal/events"
	"github.com/yourorg/roomeasy-api/internal/logger"
	"github.com/yourorg/roomeasy-api/internal/recommend"
	"github.com/yourorg/roomeasy-api/internal/session"
	"github.com/yourorg/roomeasy-api/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := backend.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open listing store")
	}
	defer closeStore()

	sessStore, memSessions, closeSessions, err := backend.OpenSessions(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open session store")
	}
	defer closeSessions()

	pub := events.NewInMemory(256)
	cat := catalog.New(st, cfg.Catalog.TTL, cfg.Catalog.Workers)
	sessions := session.NewManager(sessStore, session.Config{
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
		TTL:        cfg.Session.TTL,
	})

	router := BuildRouter(RouterDeps{
		Store:       st,
		Pub:         pub,
		Sessions:    sessions,
		Auth:        auth.NewService(st),
		Recommender: recommend.NewService(cat),
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit:   cfg.Server.RateLimit,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.New("roomeasy-api", supervisor.Config{ShutdownTimeout: cfg.Server.ShutdownTimeout})
	tree.AddBackground("catalog", cat.Serve)
	tree.AddBackground("catalog-invalidator", (&catalog.Invalidator{Pub: pub, Catalog: cat}).Serve)
	if memSessions != nil {
		tree.AddBackground("session-janitor", memSessions.Serve)
	}
	tree.AddAPI(supervisor.NewHTTPService(srv, cfg.Server.ShutdownTimeout))

	log.Info().Int("port", cfg.Server.Port).Str("store", cfg.Store.Backend).Bool("redis_sessions", memSessions == nil).Msg("roomeasy-api listening")
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("supervisor exited")
	}
}
