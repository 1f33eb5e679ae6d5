package store

import (
	"context"
	"errors"
	"testing"

	"github.com/yourorg/roomeasy-api/internal/model"
)

// exerciseStore runs the behaviour every Store backend must share.
func exerciseStore(t *testing.T, s Store, owner, other model.UserProfile) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, owner); err != nil {
		t.Fatalf("CreateUser owner: %v", err)
	}
	if _, err := s.CreateUser(ctx, other); err != nil {
		t.Fatalf("CreateUser other: %v", err)
	}
	dup := owner
	dup.Email = "OWNER@example.com"
	if _, err := s.CreateUser(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate email err = %v, want ErrDuplicate", err)
	}
	got, err := s.UserByEmail(ctx, "Owner@Example.com")
	if err != nil || got.ID != owner.ID {
		t.Fatalf("UserByEmail = %+v, %v", got, err)
	}
	if _, err := s.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user err = %v", err)
	}

	a, err := s.CreateListing(ctx, model.Listing{
		OwnerID: owner.ID, Title: "Cozy room", Address: "1 Road, Baner, Pune",
		PricePerMonth: 9000, Gallery: []string{"a.jpg", "b.jpg"}, Amenities: []string{"wifi"},
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	if a.ID == 0 || a.Status != model.StatusAvailable || a.Kind != model.KindRoom {
		t.Fatalf("created listing = %+v", a)
	}
	b, err := s.CreateListing(ctx, model.Listing{OwnerID: owner.ID, Kind: model.KindBuilding, Title: "Block B", Address: "2 Road, Aundh, Pune", PricePerMonth: 30000})
	if err != nil {
		t.Fatalf("CreateListing b: %v", err)
	}

	fetched, err := s.GetListing(ctx, a.ID)
	if err != nil || len(fetched.Gallery) != 2 || fetched.Amenities[0] != "wifi" {
		t.Fatalf("GetListing = %+v, %v", fetched, err)
	}
	if _, err := s.GetListing(ctx, 999999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing listing err = %v", err)
	}

	a.Title = "Cozier room"
	if _, err := s.UpdateListing(ctx, other.ID, a); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("update by non-owner err = %v", err)
	}
	upd, err := s.UpdateListing(ctx, owner.ID, a)
	if err != nil || upd.Title != "Cozier room" {
		t.Fatalf("UpdateListing = %+v, %v", upd, err)
	}

	if err := s.AddWishlist(ctx, other.ID, a.ID); err != nil {
		t.Fatalf("AddWishlist: %v", err)
	}
	if err := s.AddWishlist(ctx, other.ID, a.ID); err != nil {
		t.Fatalf("AddWishlist twice: %v", err)
	}
	if ok, _ := s.IsWishlisted(ctx, other.ID, a.ID); !ok {
		t.Fatal("expected wishlisted")
	}
	if wl, _ := s.Wishlist(ctx, other.ID); len(wl) != 1 || wl[0].ID != a.ID {
		t.Fatalf("Wishlist = %+v", wl)
	}

	if _, err := s.CreateBooking(ctx, model.Booking{UserID: other.ID, ListingID: a.ID, Kind: model.BookingVisit, AmountPaid: 50}); err != nil {
		t.Fatalf("visit booking: %v", err)
	}
	if l, _ := s.GetListing(ctx, a.ID); l.Status != model.StatusAvailable {
		t.Fatalf("visit changed status to %q", l.Status)
	}
	if _, err := s.CreateBooking(ctx, model.Booking{UserID: other.ID, ListingID: a.ID, Kind: model.BookingLock, AmountPaid: 450}); err != nil {
		t.Fatalf("lock booking: %v", err)
	}
	if l, _ := s.GetListing(ctx, a.ID); l.Status != model.StatusBooked {
		t.Fatalf("lock left status %q", l.Status)
	}
	if _, err := s.CreateBooking(ctx, model.Booking{UserID: other.ID, ListingID: a.ID, Kind: model.BookingFull}); !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("second reservation err = %v", err)
	}
	if _, err := s.CreateBooking(ctx, model.Booking{UserID: other.ID, ListingID: 999999, Kind: model.BookingVisit}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("booking missing listing err = %v", err)
	}
	if bs, _ := s.BookingsByUser(ctx, other.ID); len(bs) != 2 || bs[0].Kind != model.BookingLock {
		t.Fatalf("BookingsByUser = %+v", bs)
	}

	avail, err := s.FetchAvailableListings(ctx)
	if err != nil || len(avail) != 1 || avail[0].ID != b.ID {
		t.Fatalf("FetchAvailableListings = %+v, %v", avail, err)
	}
	if mine, _ := s.ListingsByOwner(ctx, owner.ID); len(mine) != 2 {
		t.Fatalf("ListingsByOwner = %d listings", len(mine))
	}

	if err := s.DeleteListing(ctx, other.ID, b.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("delete by non-owner err = %v", err)
	}
	if err := s.DeleteListing(ctx, owner.ID, b.ID); err != nil {
		t.Fatalf("DeleteListing: %v", err)
	}
	if err := s.DeleteListing(ctx, owner.ID, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete twice err = %v", err)
	}
	if err := s.RemoveWishlist(ctx, other.ID, a.ID); err != nil {
		t.Fatalf("RemoveWishlist: %v", err)
	}
	if ok, _ := s.IsWishlisted(ctx, other.ID, a.ID); ok {
		t.Fatal("still wishlisted after remove")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory(),
		model.UserProfile{ID: "u-owner", Email: "owner@example.com", PasswordHash: "x"},
		model.UserProfile{ID: "u-other", Email: "other@example.com", PasswordHash: "x"},
	)
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	l, _ := m.CreateListing(ctx, model.Listing{OwnerID: "o", Gallery: []string{"a"}})
	got, _ := m.GetListing(ctx, l.ID)
	got.Gallery[0] = "mutated"
	again, _ := m.GetListing(ctx, l.ID)
	if again.Gallery[0] != "a" {
		t.Error("caller mutation leaked into store")
	}
}
