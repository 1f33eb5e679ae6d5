package catalog

import (
	"context"

	"github.com/yourorg/roomeasy-api/internal/events"
	"github.com/yourorg/roomeasy-api/internal/logger"
)

// Invalidator consumes listing change events and drops the cached scan.
type Invalidator struct {
	Pub     events.Publisher
	Catalog *Catalog
}

func (i *Invalidator) Serve(ctx context.Context) error {
	sub := i.Pub.SubscribeListingChanged()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-sub:
			logger.L().Debug().Int64("listing_id", evt.ListingID).Str("kind", string(evt.Kind)).Msg("listing changed")
			i.Catalog.Invalidate()
		}
	}
}
