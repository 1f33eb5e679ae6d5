package recommend

import (
	"context"
	"math/rand/v2"

	"github.com/yourorg/roomeasy-api/internal/logger"
	"github.com/yourorg/roomeasy-api/internal/metrics"
	"github.com/yourorg/roomeasy-api/internal/model"
)

type Fetcher interface {
	FetchAvailableListings(ctx context.Context) ([]model.Listing, error)
}

type Service struct {
	src     Fetcher
	newRand func() *rand.Rand
}

type Option func(*Service)

// WithRand sets the random source factory. It is called once per resolution.
func WithRand(fn func() *rand.Rand) Option {
	return func(s *Service) { s.newRand = fn }
}

func NewService(src Fetcher, opts ...Option) *Service {
	s := &Service{
		src: src,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Home resolves the home page for sess. A store failure is logged and the
// page is resolved against an empty pool.
func (s *Service) Home(ctx context.Context, query string, sess model.ViewerSession) (Result, model.ViewerSession) {
	listings, err := s.src.FetchAvailableListings(ctx)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("available listings fetch failed; serving empty home")
		metrics.StoreFetchFailures.Inc()
		listings = nil
	}
	res, sess := Resolve(listings, query, sess, s.newRand())
	metrics.Recommendations.WithLabelValues(string(res.Source)).Inc()
	return res, sess
}
