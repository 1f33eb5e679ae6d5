package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yourorg/roomeasy-api/internal/logger"
	"github.com/yourorg/roomeasy-api/internal/metrics"
	"github.com/yourorg/roomeasy-api/internal/model"
)

type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
	Interval         time.Duration
}

// Guarded puts circuit breakers in front of the read paths of a Store.
// Failures, and calls rejected by an open breaker, are wrapped in
// ErrUnavailable. Writes pass straight through.
type Guarded struct {
	Store
	list *gobreaker.CircuitBreaker[[]model.Listing]
	one  *gobreaker.CircuitBreaker[model.Listing]
}

func NewGuarded(s Store, cfg BreakerConfig) *Guarded {
	if cfg.Name == "" {
		cfg.Name = "listing-store"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    cfg.Interval,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= cfg.FailureThreshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.L().Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
				metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
			},
		}
	}
	return &Guarded{
		Store: s,
		list:  gobreaker.NewCircuitBreaker[[]model.Listing](settings(cfg.Name + ":scan")),
		one:   gobreaker.NewCircuitBreaker[model.Listing](settings(cfg.Name + ":get")),
	}
}

func (g *Guarded) FetchAvailableListings(ctx context.Context) ([]model.Listing, error) {
	out, err := g.list.Execute(func() ([]model.Listing, error) {
		return g.Store.FetchAvailableListings(ctx)
	})
	if err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

func (g *Guarded) GetListing(ctx context.Context, id int64) (model.Listing, error) {
	out, err := g.one.Execute(func() (model.Listing, error) {
		return g.Store.GetListing(ctx, id)
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return out, unavailable(err)
	}
	return out, err
}

func unavailable(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}
