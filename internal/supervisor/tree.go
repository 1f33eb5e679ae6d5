// Package supervisor runs the long-lived parts of the service under a
// suture tree so a crashed worker is restarted instead of taking the
// process down.
package supervisor

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/yourorg/roomeasy-api/internal/logger"
)

type Config struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

func (c *Config) defaults() {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = 30
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = 15 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Tree has a background layer (cache, invalidation, session janitor) and an
// api layer (HTTP server) under one root.
type Tree struct {
	root       *suture.Supervisor
	background *suture.Supervisor
	api        *suture.Supervisor
}

func New(name string, cfg Config) *Tree {
	cfg.defaults()
	spec := func(hook bool) suture.Spec {
		s := suture.Spec{
			FailureThreshold: cfg.FailureThreshold,
			FailureDecay:     cfg.FailureDecay,
			FailureBackoff:   cfg.FailureBackoff,
			Timeout:          cfg.ShutdownTimeout,
		}
		if hook {
			s.EventHook = logEvent
		}
		return s
	}
	t := &Tree{
		root:       suture.New(name, spec(true)),
		background: suture.New("background", spec(false)),
		api:        suture.New("api", spec(false)),
	}
	t.root.Add(t.background)
	t.root.Add(t.api)
	return t
}

func logEvent(e suture.Event) {
	logger.L().Warn().Fields(e.Map()).Msg(e.String())
}

func (t *Tree) AddBackground(name string, fn func(ctx context.Context) error) {
	t.background.Add(Func(name, fn))
}

func (t *Tree) AddAPI(svc suture.Service) { t.api.Add(svc) }

func (t *Tree) Serve(ctx context.Context) error { return t.root.Serve(ctx) }

type funcService struct {
	name string
	fn   func(ctx context.Context) error
}

// Func adapts a Serve-style function into a named suture service.
func Func(name string, fn func(ctx context.Context) error) suture.Service {
	return funcService{name: name, fn: fn}
}

func (f funcService) Serve(ctx context.Context) error { return f.fn(ctx) }

func (f funcService) String() string { return f.name }
