package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/yourorg/roomeasy-api/internal/model"
)

type Postgres struct{ DB *sql.DB }

func Open(dsn string, maxOpen int) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Postgres{DB: db}, nil
}

func (s *Postgres) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Postgres) Close() error { return s.DB.Close() }

func (s *Postgres) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_profiles (
            id             UUID PRIMARY KEY,
            email          TEXT NOT NULL,
            display_name   TEXT NOT NULL DEFAULT '',
            password_hash  TEXT NOT NULL,
            created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_user_profiles_email ON user_profiles(lower(email));`,
		`CREATE TABLE IF NOT EXISTS rooms (
            id               BIGSERIAL PRIMARY KEY,
            owner_id         UUID NOT NULL REFERENCES user_profiles(id) ON DELETE CASCADE,
            kind             TEXT NOT NULL DEFAULT 'room',
            title            TEXT NOT NULL,
            address          TEXT NOT NULL,
            nearby_location  TEXT NOT NULL DEFAULT '',
            city             TEXT NOT NULL DEFAULT '',
            state            TEXT NOT NULL DEFAULT '',
            price_per_month  NUMERIC(12,2) NOT NULL CHECK (price_per_month >= 0),
            description      TEXT NOT NULL DEFAULT '',
            image_url        TEXT NOT NULL DEFAULT '',
            gallery          JSONB NOT NULL DEFAULT '[]',
            amenities        JSONB NOT NULL DEFAULT '[]',
            status           TEXT NOT NULL DEFAULT 'available',
            created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_status ON rooms(status);`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_owner ON rooms(owner_id);`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id            BIGSERIAL PRIMARY KEY,
            user_id       UUID NOT NULL REFERENCES user_profiles(id) ON DELETE CASCADE,
            room_id       BIGINT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
            booking_type  TEXT NOT NULL CHECK (booking_type IN ('lock','full','visit')),
            amount_paid   NUMERIC(12,2) NOT NULL DEFAULT 0,
            created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS wishlist (
            user_id     UUID NOT NULL REFERENCES user_profiles(id) ON DELETE CASCADE,
            room_id     BIGINT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
            created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (user_id, room_id)
        );`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

const roomColumns = `id, owner_id, kind, title, address, nearby_location, city, state,
    price_per_month, description, image_url, gallery, amenities, status, created_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanListing(row rowScanner) (model.Listing, error) {
	var l model.Listing
	var gallery, amenities []byte
	err := row.Scan(&l.ID, &l.OwnerID, &l.Kind, &l.Title, &l.Address, &l.Nearby, &l.City, &l.State,
		&l.PricePerMonth, &l.Description, &l.ImageURL, &gallery, &amenities, &l.Status, &l.CreatedAt)
	if err != nil {
		return l, err
	}
	if err := json.Unmarshal(gallery, &l.Gallery); err != nil {
		return l, fmt.Errorf("gallery: %w", err)
	}
	if err := json.Unmarshal(amenities, &l.Amenities); err != nil {
		return l, fmt.Errorf("amenities: %w", err)
	}
	return l, nil
}

func (s *Postgres) queryListings(ctx context.Context, q string, args ...any) ([]model.Listing, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Postgres) FetchAvailableListings(ctx context.Context) ([]model.Listing, error) {
	return s.queryListings(ctx, `SELECT `+roomColumns+` FROM rooms WHERE status = $1 ORDER BY id`, model.StatusAvailable)
}

func (s *Postgres) ListingsByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	return s.queryListings(ctx, `SELECT `+roomColumns+` FROM rooms WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, ownerID)
}

func (s *Postgres) GetListing(ctx context.Context, id int64) (model.Listing, error) {
	l, err := scanListing(s.DB.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return l, ErrNotFound
	}
	return l, err
}

func (s *Postgres) CreateListing(ctx context.Context, l model.Listing) (model.Listing, error) {
	gallery, amenities, err := encodeLists(l)
	if err != nil {
		return l, err
	}
	if l.Status == "" {
		l.Status = model.StatusAvailable
	}
	if l.Kind == "" {
		l.Kind = model.KindRoom
	}
	err = s.DB.QueryRowContext(ctx, `
        INSERT INTO rooms (owner_id, kind, title, address, nearby_location, city, state,
                           price_per_month, description, image_url, gallery, amenities, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at`,
		l.OwnerID, l.Kind, l.Title, l.Address, l.Nearby, l.City, l.State,
		l.PricePerMonth, l.Description, l.ImageURL, gallery, amenities, l.Status,
	).Scan(&l.ID, &l.CreatedAt)
	return l, mapPgError(err)
}

func (s *Postgres) UpdateListing(ctx context.Context, ownerID string, l model.Listing) (model.Listing, error) {
	gallery, amenities, err := encodeLists(l)
	if err != nil {
		return l, err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return l, err
	}
	defer func() { _ = tx.Rollback() }()

	if err = checkOwner(ctx, tx, l.ID, ownerID); err != nil {
		return l, err
	}
	out, err := scanListing(tx.QueryRowContext(ctx, `
        UPDATE rooms SET kind=$2, title=$3, address=$4, nearby_location=$5, city=$6, state=$7,
                         price_per_month=$8, description=$9, image_url=$10, gallery=$11, amenities=$12
        WHERE id=$1
        RETURNING `+roomColumns,
		l.ID, l.Kind, l.Title, l.Address, l.Nearby, l.City, l.State,
		l.PricePerMonth, l.Description, l.ImageURL, gallery, amenities,
	))
	if err != nil {
		return l, err
	}
	return out, tx.Commit()
}

func (s *Postgres) DeleteListing(ctx context.Context, ownerID string, id int64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwner(ctx, tx, id, ownerID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id=$1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func checkOwner(ctx context.Context, tx *sql.Tx, id int64, ownerID string) error {
	var owner string
	err := tx.QueryRowContext(ctx, `SELECT owner_id FROM rooms WHERE id=$1 FOR UPDATE`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != ownerID {
		return ErrNotOwner
	}
	return nil
}

func (s *Postgres) CreateUser(ctx context.Context, u model.UserProfile) (model.UserProfile, error) {
	err := s.DB.QueryRowContext(ctx, `
        INSERT INTO user_profiles (id, email, display_name, password_hash)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at`,
		u.ID, strings.ToLower(u.Email), u.DisplayName, u.PasswordHash,
	).Scan(&u.CreatedAt)
	return u, mapPgError(err)
}

func (s *Postgres) UserByEmail(ctx context.Context, email string) (model.UserProfile, error) {
	var u model.UserProfile
	err := s.DB.QueryRowContext(ctx, `
        SELECT id, email, display_name, password_hash, created_at
        FROM user_profiles WHERE lower(email) = lower($1)`, email,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

func (s *Postgres) AddWishlist(ctx context.Context, userID string, listingID int64) error {
	_, err := s.DB.ExecContext(ctx, `
        INSERT INTO wishlist (user_id, room_id) VALUES ($1,$2)
        ON CONFLICT (user_id, room_id) DO NOTHING`, userID, listingID)
	return mapPgError(err)
}

func (s *Postgres) RemoveWishlist(ctx context.Context, userID string, listingID int64) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM wishlist WHERE user_id=$1 AND room_id=$2`, userID, listingID)
	return err
}

func (s *Postgres) IsWishlisted(ctx context.Context, userID string, listingID int64) (bool, error) {
	var ok bool
	err := s.DB.QueryRowContext(ctx, `
        SELECT EXISTS (SELECT 1 FROM wishlist WHERE user_id=$1 AND room_id=$2)`, userID, listingID,
	).Scan(&ok)
	return ok, err
}

func (s *Postgres) Wishlist(ctx context.Context, userID string) ([]model.Listing, error) {
	return s.queryListings(ctx, `
        SELECT r.id, r.owner_id, r.kind, r.title, r.address, r.nearby_location, r.city, r.state,
               r.price_per_month, r.description, r.image_url, r.gallery, r.amenities, r.status, r.created_at
        FROM wishlist w JOIN rooms r ON r.id = w.room_id
        WHERE w.user_id = $1
        ORDER BY w.created_at DESC`, userID)
}

func (s *Postgres) CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return b, err
	}
	defer func() { _ = tx.Rollback() }()

	var status model.ListingStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM rooms WHERE id=$1 FOR UPDATE`, b.ListingID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	if err != nil {
		return b, err
	}
	if b.Kind.Reserves() && status == model.StatusBooked {
		return b, ErrAlreadyBooked
	}

	err = tx.QueryRowContext(ctx, `
        INSERT INTO bookings (user_id, room_id, booking_type, amount_paid)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`,
		b.UserID, b.ListingID, b.Kind, b.AmountPaid,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return b, mapPgError(err)
	}
	if b.Kind.Reserves() {
		if _, err = tx.ExecContext(ctx, `UPDATE rooms SET status=$2 WHERE id=$1`, b.ListingID, model.StatusBooked); err != nil {
			return b, err
		}
	}
	return b, tx.Commit()
}

func (s *Postgres) BookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	rows, err := s.DB.QueryContext(ctx, `
        SELECT id, user_id, room_id, booking_type, amount_paid, created_at
        FROM bookings WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.ListingID, &b.Kind, &b.AmountPaid, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func encodeLists(l model.Listing) (gallery, amenities string, err error) {
	g, err := json.Marshal(nonNilStrings(l.Gallery))
	if err != nil {
		return "", "", err
	}
	a, err := json.Marshal(nonNilStrings(l.Amenities))
	if err != nil {
		return "", "", err
	}
	return string(g), string(a), nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// mapPgError translates constraint violations into store errors.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return ErrDuplicate
	case "23503":
		return ErrNotFound
	}
	return err
}
