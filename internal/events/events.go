package events

import (
	"context"
	"time"
)

type ChangeKind string

const (
	ListingCreated ChangeKind = "created"
	ListingUpdated ChangeKind = "updated"
	ListingDeleted ChangeKind = "deleted"
	ListingBooked  ChangeKind = "booked"
)

type ListingChanged struct {
	ListingID int64
	Kind      ChangeKind
	At        time.Time
}

type Publisher interface {
	PublishListingChanged(ctx context.Context, evt ListingChanged)
	SubscribeListingChanged() <-chan ListingChanged
}

type inMemory struct{ ch chan ListingChanged }

// NewInMemory returns a single-consumer publisher. Publishing never blocks;
// events are dropped when the buffer is full.
func NewInMemory(buffer int) Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &inMemory{ch: make(chan ListingChanged, buffer)}
}

func (m *inMemory) PublishListingChanged(_ context.Context, evt ListingChanged) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	select {
	case m.ch <- evt:
	default:
	}
}

func (m *inMemory) SubscribeListingChanged() <-chan ListingChanged { return m.ch }
