// Package store defines the Listing Store contract and its Postgres and
// in-memory implementations.
package store

import (
	"context"
	"errors"

	"github.com/yourorg/roomeasy-api/internal/model"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNotOwner      = errors.New("listing belongs to another user")
	ErrDuplicate     = errors.New("already exists")
	ErrAlreadyBooked = errors.New("listing is already booked")
	ErrUnavailable   = errors.New("listing store unavailable")
)

type Listings interface {
	// FetchAvailableListings is a full scan of available listings in id order.
	FetchAvailableListings(ctx context.Context) ([]model.Listing, error)
	GetListing(ctx context.Context, id int64) (model.Listing, error)
	CreateListing(ctx context.Context, l model.Listing) (model.Listing, error)
	// UpdateListing replaces the editable fields of l.ID if ownerID owns it.
	UpdateListing(ctx context.Context, ownerID string, l model.Listing) (model.Listing, error)
	DeleteListing(ctx context.Context, ownerID string, id int64) error
	ListingsByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)
}

type Users interface {
	CreateUser(ctx context.Context, u model.UserProfile) (model.UserProfile, error)
	UserByEmail(ctx context.Context, email string) (model.UserProfile, error)
}

type Wishlists interface {
	// AddWishlist is idempotent.
	AddWishlist(ctx context.Context, userID string, listingID int64) error
	RemoveWishlist(ctx context.Context, userID string, listingID int64) error
	IsWishlisted(ctx context.Context, userID string, listingID int64) (bool, error)
	Wishlist(ctx context.Context, userID string) ([]model.Listing, error)
}

type Bookings interface {
	// CreateBooking records b and, for lock and full bookings, marks the
	// listing booked. Reserving an already booked listing is ErrAlreadyBooked.
	CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error)
	BookingsByUser(ctx context.Context, userID string) ([]model.Booking, error)
}

type Store interface {
	Listings
	Users
	Wishlists
	Bookings
	Ping(ctx context.Context) error
}
