package supabase

import (
	"strings"
	"time"

	"github.com/yourorg/roomeasy-api/internal/model"
)

func toListing(r roomRow) model.Listing {
	return model.Listing{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Kind:          model.ListingKind(nonEmpty(r.Kind, string(model.KindRoom))),
		Title:         r.Title,
		Address:       r.Address,
		Nearby:        r.NearbyLocation,
		City:          r.City,
		State:         r.State,
		PricePerMonth: r.PricePerMonth,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		Gallery:       r.Gallery,
		Amenities:     r.Amenities,
		Status:        model.ListingStatus(nonEmpty(r.Status, string(model.StatusAvailable))),
		CreatedAt:     r.CreatedAt,
	}
}

func toListings(rows []roomRow) []model.Listing {
	out := make([]model.Listing, 0, len(rows))
	for _, r := range rows {
		out = append(out, toListing(r))
	}
	return out
}

func fromListing(l model.Listing) roomWrite {
	return roomWrite{
		OwnerID:        l.OwnerID,
		Kind:           nonEmpty(string(l.Kind), string(model.KindRoom)),
		Title:          l.Title,
		Address:        l.Address,
		NearbyLocation: l.Nearby,
		City:           l.City,
		State:          l.State,
		PricePerMonth:  l.PricePerMonth,
		Description:    l.Description,
		ImageURL:       l.ImageURL,
		Gallery:        nonNil(l.Gallery),
		Amenities:      nonNil(l.Amenities),
		Status:         string(l.Status),
	}
}

func toUser(r userRow) model.UserProfile {
	return model.UserProfile{
		ID:           r.ID,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
		PasswordHash: r.PasswordHash,
		CreatedAt:    deref(r.CreatedAt),
	}
}

func fromUser(u model.UserProfile) userRow {
	return userRow{
		ID:           u.ID,
		Email:        strings.ToLower(u.Email),
		DisplayName:  u.DisplayName,
		PasswordHash: u.PasswordHash,
	}
}

func toBooking(r bookingRow) model.Booking {
	return model.Booking{
		ID:         r.ID,
		UserID:     r.UserID,
		ListingID:  r.RoomID,
		Kind:       model.BookingKind(r.BookingType),
		AmountPaid: r.AmountPaid,
		CreatedAt:  deref(r.CreatedAt),
	}
}

func fromBooking(b model.Booking) bookingRow {
	return bookingRow{
		UserID:      b.UserID,
		RoomID:      b.ListingID,
		BookingType: string(b.Kind),
		AmountPaid:  b.AmountPaid,
	}
}

func nonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
