// Package backend opens the configured listing store and session store.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/roomeasy-api/internal/config"
	"github.com/yourorg/roomeasy-api/internal/logger"
	"github.com/yourorg/roomeasy-api/internal/session"
	"github.com/yourorg/roomeasy-api/internal/store"
	"github.com/yourorg/roomeasy-api/supabase"
)

// OpenStore returns the listing store for cfg.Store.Backend and a close
// func. Remote backends are wrapped in a circuit breaker.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, func() error, error) {
	noop := func() error { return nil }
	breaker := store.BreakerConfig{
		Name:             cfg.Store.Backend,
		FailureThreshold: cfg.Breaker.FailureThreshold,
		OpenTimeout:      cfg.Breaker.OpenTimeout,
	}

	switch cfg.Store.Backend {
	case "memory":
		logger.L().Warn().Msg("using in-memory listing store; data is lost on restart")
		return store.NewMemory(), noop, nil

	case "supabase":
		c := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key,
			supabase.WithRateLimit(cfg.Supabase.RatePerSecond, cfg.Supabase.Burst))
		st := supabase.NewStore(c)
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := st.Ping(pingCtx); err != nil {
			logger.L().Warn().Err(err).Msg("supabase ping failed; continuing behind breaker")
		}
		return store.NewGuarded(st, breaker), noop, nil

	case "postgres":
		pg, err := store.Open(cfg.Postgres.DSN, cfg.Postgres.MaxOpen)
		if err != nil {
			return nil, noop, fmt.Errorf("postgres open: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := pg.Ping(pingCtx); err != nil {
			_ = pg.Close()
			return nil, noop, fmt.Errorf("postgres ping: %w", err)
		}
		if cfg.Store.Migrate {
			if err := pg.Migrate(pingCtx); err != nil {
				_ = pg.Close()
				return nil, noop, fmt.Errorf("postgres migrate: %w", err)
			}
		}
		return store.NewGuarded(pg, breaker), pg.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// OpenSessions returns Redis-backed sessions when an address is configured
// and an in-process store otherwise. The memory store must be served so
// expired sessions are reclaimed; it is returned as the second value.
func OpenSessions(ctx context.Context, cfg *config.Config) (session.Store, *session.MemoryStore, func() error, error) {
	if cfg.Redis.Addr == "" {
		mem := session.NewMemory(cfg.Session.TTL)
		return mem, mem, func() error { return nil }, nil
	}
	rs := session.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Session.TTL)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		_ = rs.Close()
		return nil, nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return rs, nil, rs.Close, nil
}
