// Package catalog caches the available-listing scan in front of the store.
package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/yourorg/roomeasy-api/internal/logger"
	"github.com/yourorg/roomeasy-api/internal/metrics"
	"github.com/yourorg/roomeasy-api/internal/model"
	"github.com/yourorg/roomeasy-api/internal/refresh"
)

const availableKey = "available"

type Fetcher interface {
	FetchAvailableListings(ctx context.Context) ([]model.Listing, error)
}

// Catalog serves FetchAvailableListings from a short-lived cache. Writes
// call Invalidate, which drops the entry and re-warms it in the background.
type Catalog struct {
	src       Fetcher
	cache     *ttlcache.Cache[string, []model.Listing]
	refresher *refresh.Refresher
	gen       atomic.Uint64
}

func New(src Fetcher, ttl time.Duration, workers int) *Catalog {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	c := &Catalog{
		src: src,
		cache: ttlcache.New(
			ttlcache.WithTTL[string, []model.Listing](ttl),
			ttlcache.WithDisableTouchOnHit[string, []model.Listing](),
		),
	}
	c.refresher = refresh.New(8, workers, c.warm)
	return c
}

func (c *Catalog) FetchAvailableListings(ctx context.Context) ([]model.Listing, error) {
	if item := c.cache.Get(availableKey); item != nil {
		metrics.CatalogCache.WithLabelValues("hit").Inc()
		return append([]model.Listing(nil), item.Value()...), nil
	}
	metrics.CatalogCache.WithLabelValues("miss").Inc()
	return c.load(ctx)
}

// load fetches from the store and caches the result unless an
// invalidation happened while the fetch was in flight.
func (c *Catalog) load(ctx context.Context) ([]model.Listing, error) {
	gen := c.gen.Load()
	ls, err := c.src.FetchAvailableListings(ctx)
	if err != nil {
		return nil, err
	}
	if c.gen.Load() == gen {
		c.cache.Set(availableKey, ls, ttlcache.DefaultTTL)
	}
	return append([]model.Listing(nil), ls...), nil
}

func (c *Catalog) Invalidate() {
	c.gen.Add(1)
	c.cache.Delete(availableKey)
	c.refresher.Enqueue(refresh.Job{Key: availableKey})
}

func (c *Catalog) warm(ctx context.Context, _ refresh.Job) {
	if _, err := c.load(ctx); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("catalog re-warm failed")
	}
}

// Serve runs the cache janitor and the re-warm workers until ctx ends.
func (c *Catalog) Serve(ctx context.Context) error {
	go c.cache.Start()
	defer c.cache.Stop()
	return c.refresher.Serve(ctx)
}
