package model

import "time"

type BookingKind string

const (
	BookingLock  BookingKind = "lock"
	BookingFull  BookingKind = "full"
	BookingVisit BookingKind = "visit"
)

func (k BookingKind) Valid() bool {
	switch k {
	case BookingLock, BookingFull, BookingVisit:
		return true
	}
	return false
}

// Reserves reports whether a booking of this kind takes the listing off the market.
func (k BookingKind) Reserves() bool { return k == BookingLock || k == BookingFull }

type Booking struct {
	ID         int64       `json:"id"`
	UserID     string      `json:"user_id"`
	ListingID  int64       `json:"room_id"`
	Kind       BookingKind `json:"booking_type"`
	AmountPaid float64     `json:"amount_paid"`
	CreatedAt  time.Time   `json:"created_at"`
}

type WishlistEntry struct {
	UserID    string    `json:"user_id"`
	ListingID int64     `json:"room_id"`
	CreatedAt time.Time `json:"created_at"`
}

type UserProfile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
