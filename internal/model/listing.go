package model

import (
	"math"
	"time"
)

type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusBooked    ListingStatus = "booked"
)

type ListingKind string

const (
	KindRoom     ListingKind = "room"
	KindBuilding ListingKind = "building"
)

// Listing is a rentable room or building. Nearby, City and State are derived
// from Address when the listing is written.
type Listing struct {
	ID            int64         `json:"id"`
	OwnerID       string        `json:"owner_id"`
	Kind          ListingKind   `json:"kind"`
	Title         string        `json:"title"`
	Address       string        `json:"address"`
	Nearby        string        `json:"nearby_location,omitempty"`
	City          string        `json:"city,omitempty"`
	State         string        `json:"state,omitempty"`
	PricePerMonth float64       `json:"price_per_month"`
	Description   string        `json:"description"`
	ImageURL      string        `json:"image_url"`
	Gallery       []string      `json:"gallery,omitempty"`
	Amenities     []string      `json:"amenities,omitempty"`
	Status        ListingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (l Listing) Available() bool { return l.Status == StatusAvailable }

const (
	LockRate = 0.05
	VisitFee = 50.0
)

// Quote is what the detail page offers: pay the full rent, lock the room
// for a fraction of it, or pay a flat fee to visit.
type Quote struct {
	FullRent   float64 `json:"full_rent"`
	LockAmount float64 `json:"lock_amount"`
	VisitFee   float64 `json:"visit_fee"`
}

func QuoteFor(l Listing) Quote {
	return Quote{
		FullRent:   l.PricePerMonth,
		LockAmount: math.Round(l.PricePerMonth*LockRate*100) / 100,
		VisitFee:   VisitFee,
	}
}
