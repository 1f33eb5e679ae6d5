// Command seed loads listings from a YAML file into the configured store.
// With SEED_INTERVAL set it keeps re-applying the file until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourorg/roomeasy-api/internal/auth"
	"github.com/yourorg/roomeasy-api/internal/backend"
	"github.com/yourorg/roomeasy-api/internal/config"
	"github.com/yourorg/roomeasy-api/internal/logger"
	"github.com/yourorg/roomeasy-api/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Store.Backend == "memory" {
		fmt.Fprintln(os.Stderr, "seed: the memory backend does not outlive this process")
		os.Exit(1)
	}
	if len(os.Args) > 1 {
		cfg.Seed.File = os.Args[1]
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

	job := &seed.Job{
		Store:    st,
		Auth:     auth.NewService(st),
		Path:     cfg.Seed.File,
		Interval: cfg.Seed.Interval,
	}
	if err := job.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Str("file", cfg.Seed.File).Msg("seed failed")
		closeStore()
		os.Exit(1)
	}
}
