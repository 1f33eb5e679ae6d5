package supabase

import "time"

// Row shapes as PostgREST returns them. Server-assigned columns are
// pointers or omitempty so inserts leave them to the database defaults.

type roomRow struct {
	ID             int64     `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Kind           string    `json:"kind"`
	Title          string    `json:"title"`
	Address        string    `json:"address"`
	NearbyLocation string    `json:"nearby_location"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	PricePerMonth  float64   `json:"price_per_month"`
	Description    string    `json:"description"`
	ImageURL       string    `json:"image_url"`
	Gallery        []string  `json:"gallery"`
	Amenities      []string  `json:"amenities"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type roomWrite struct {
	OwnerID        string   `json:"owner_id,omitempty"`
	Kind           string   `json:"kind"`
	Title          string   `json:"title"`
	Address        string   `json:"address"`
	NearbyLocation string   `json:"nearby_location"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	PricePerMonth  float64  `json:"price_per_month"`
	Description    string   `json:"description"`
	ImageURL       string   `json:"image_url"`
	Gallery        []string `json:"gallery"`
	Amenities      []string `json:"amenities"`
	Status         string   `json:"status,omitempty"`
}

type statusPatch struct {
	Status string `json:"status"`
}

type userRow struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"password_hash"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

type bookingRow struct {
	ID          int64      `json:"id,omitempty"`
	UserID      string     `json:"user_id"`
	RoomID      int64      `json:"room_id"`
	BookingType string     `json:"booking_type"`
	AmountPaid  float64    `json:"amount_paid"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

type wishlistRow struct {
	UserID    string     `json:"user_id"`
	RoomID    int64      `json:"room_id"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Room      *roomRow   `json:"rooms,omitempty"`
}
