package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/yourorg/roomeasy-api/internal/logger"
	"github.com/yourorg/roomeasy-api/internal/model"
	"github.com/yourorg/roomeasy-api/internal/store"
)

const (
	tableRooms    = "rooms"
	tableUsers    = "user_profiles"
	tableBookings = "bookings"
	tableWishlist = "wishlist"
)

// Store implements store.Store over PostgREST. PostgREST has no
// multi-statement transactions, so a reservation is a conditional PATCH on
// the listing status followed by the booking insert, with the status
// restored if the insert fails.
type Store struct {
	c *Client
}

var _ store.Store = (*Store)(nil)

func NewStore(c *Client) *Store { return &Store{c: c} }

func eq(v string) string { return "eq." + v }

func eqID(id int64) string { return eq(strconv.FormatInt(id, 10)) }

func returnRepresentation() []string { return []string{"return=representation"} }

func (s *Store) Ping(ctx context.Context) error {
	var rows []struct {
		ID int64 `json:"id"`
	}
	return mapErr(s.c.getRows(ctx, tableRooms, url.Values{"select": {"id"}, "limit": {"1"}}, &rows))
}

func (s *Store) FetchAvailableListings(ctx context.Context) ([]model.Listing, error) {
	q := url.Values{
		"select": {"*"},
		"status": {eq(string(model.StatusAvailable))},
		"order":  {"id.asc"},
	}
	var rows []roomRow
	if err := s.c.getRows(ctx, tableRooms, q, &rows); err != nil {
		return nil, mapErr(err)
	}
	return toListings(rows), nil
}

func (s *Store) ListingsByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	q := url.Values{
		"select":   {"*"},
		"owner_id": {eq(ownerID)},
		"order":    {"created_at.desc,id.desc"},
	}
	var rows []roomRow
	if err := s.c.getRows(ctx, tableRooms, q, &rows); err != nil {
		return nil, mapErr(err)
	}
	return toListings(rows), nil
}

func (s *Store) GetListing(ctx context.Context, id int64) (model.Listing, error) {
	var rows []roomRow
	if err := s.c.getRows(ctx, tableRooms, url.Values{"select": {"*"}, "id": {eqID(id)}}, &rows); err != nil {
		return model.Listing{}, mapErr(err)
	}
	if len(rows) == 0 {
		return model.Listing{}, store.ErrNotFound
	}
	return toListing(rows[0]), nil
}

func (s *Store) CreateListing(ctx context.Context, l model.Listing) (model.Listing, error) {
	w := fromListing(l)
	if w.Status == "" {
		w.Status = string(model.StatusAvailable)
	}
	raw, err := s.c.do(ctx, request{
		method: http.MethodPost,
		table:  tableRooms,
		body:   w,
		prefer: returnRepresentation(),
	})
	if err != nil {
		return l, mapErr(err)
	}
	return firstListing(raw)
}

func (s *Store) UpdateListing(ctx context.Context, ownerID string, l model.Listing) (model.Listing, error) {
	if err := s.checkOwner(ctx, l.ID, ownerID); err != nil {
		return l, err
	}
	w := fromListing(l)
	w.OwnerID, w.Status = "", ""
	raw, err := s.c.do(ctx, request{
		method: http.MethodPatch,
		table:  tableRooms,
		query:  url.Values{"id": {eqID(l.ID)}, "owner_id": {eq(ownerID)}},
		body:   w,
		prefer: returnRepresentation(),
	})
	if err != nil {
		return l, mapErr(err)
	}
	return firstListing(raw)
}

func (s *Store) DeleteListing(ctx context.Context, ownerID string, id int64) error {
	if err := s.checkOwner(ctx, id, ownerID); err != nil {
		return err
	}
	_, err := s.c.do(ctx, request{
		method: http.MethodDelete,
		table:  tableRooms,
		query:  url.Values{"id": {eqID(id)}, "owner_id": {eq(ownerID)}},
	})
	return mapErr(err)
}

func (s *Store) checkOwner(ctx context.Context, id int64, ownerID string) error {
	var rows []struct {
		OwnerID string `json:"owner_id"`
	}
	if err := s.c.getRows(ctx, tableRooms, url.Values{"select": {"owner_id"}, "id": {eqID(id)}}, &rows); err != nil {
		return mapErr(err)
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	if rows[0].OwnerID != ownerID {
		return store.ErrNotOwner
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, u model.UserProfile) (model.UserProfile, error) {
	raw, err := s.c.do(ctx, request{
		method: http.MethodPost,
		table:  tableUsers,
		body:   fromUser(u),
		prefer: returnRepresentation(),
	})
	if err != nil {
		return u, mapErr(err)
	}
	var rows []userRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return u, err
	}
	if len(rows) == 0 {
		return u, errors.New("supabase: insert returned no rows")
	}
	return toUser(rows[0]), nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (model.UserProfile, error) {
	var rows []userRow
	q := url.Values{"select": {"*"}, "email": {eq(strings.ToLower(email))}}
	if err := s.c.getRows(ctx, tableUsers, q, &rows); err != nil {
		return model.UserProfile{}, mapErr(err)
	}
	if len(rows) == 0 {
		return model.UserProfile{}, store.ErrNotFound
	}
	return toUser(rows[0]), nil
}

func (s *Store) AddWishlist(ctx context.Context, userID string, listingID int64) error {
	_, err := s.c.do(ctx, request{
		method: http.MethodPost,
		table:  tableWishlist,
		query:  url.Values{"on_conflict": {"user_id,room_id"}},
		body:   wishlistRow{UserID: userID, RoomID: listingID},
		prefer: []string{"resolution=ignore-duplicates", "return=minimal"},
	})
	return mapErr(err)
}

func (s *Store) RemoveWishlist(ctx context.Context, userID string, listingID int64) error {
	_, err := s.c.do(ctx, request{
		method: http.MethodDelete,
		table:  tableWishlist,
		query:  url.Values{"user_id": {eq(userID)}, "room_id": {eqID(listingID)}},
	})
	return mapErr(err)
}

func (s *Store) IsWishlisted(ctx context.Context, userID string, listingID int64) (bool, error) {
	var rows []wishlistRow
	q := url.Values{
		"select":  {"user_id,room_id"},
		"user_id": {eq(userID)},
		"room_id": {eqID(listingID)},
		"limit":   {"1"},
	}
	if err := s.c.getRows(ctx, tableWishlist, q, &rows); err != nil {
		return false, mapErr(err)
	}
	return len(rows) > 0, nil
}

func (s *Store) Wishlist(ctx context.Context, userID string) ([]model.Listing, error) {
	var rows []wishlistRow
	q := url.Values{
		"select":  {"user_id,room_id,created_at,rooms(*)"},
		"user_id": {eq(userID)},
		"order":   {"created_at.desc"},
	}
	if err := s.c.getRows(ctx, tableWishlist, q, &rows); err != nil {
		return nil, mapErr(err)
	}
	out := make([]model.Listing, 0, len(rows))
	for _, r := range rows {
		if r.Room != nil {
			out = append(out, toListing(*r.Room))
		}
	}
	return out, nil
}

func (s *Store) CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	reserved := false
	if b.Kind.Reserves() {
		ok, err := s.reserve(ctx, b.ListingID)
		if err != nil {
			return b, err
		}
		if !ok {
			if _, err := s.GetListing(ctx, b.ListingID); err != nil {
				return b, err
			}
			return b, store.ErrAlreadyBooked
		}
		reserved = true
	} else if _, err := s.GetListing(ctx, b.ListingID); err != nil {
		return b, err
	}

	raw, err := s.c.do(ctx, request{
		method: http.MethodPost,
		table:  tableBookings,
		body:   fromBooking(b),
		prefer: returnRepresentation(),
	})
	if err != nil {
		if reserved {
			s.release(ctx, b.ListingID)
		}
		return b, mapErr(err)
	}
	var rows []bookingRow
	if err := json.Unmarshal(raw, &rows); err != nil || len(rows) == 0 {
		return b, errors.New("supabase: booking insert returned no rows")
	}
	return toBooking(rows[0]), nil
}

// reserve flips an available listing to booked. It reports false when no
// available row matched.
func (s *Store) reserve(ctx context.Context, id int64) (bool, error) {
	raw, err := s.c.do(ctx, request{
		method: http.MethodPatch,
		table:  tableRooms,
		query:  url.Values{"id": {eqID(id)}, "status": {eq(string(model.StatusAvailable))}, "select": {"id"}},
		body:   statusPatch{Status: string(model.StatusBooked)},
		prefer: returnRepresentation(),
	})
	if err != nil {
		return false, mapErr(err)
	}
	var rows []struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (s *Store) release(ctx context.Context, id int64) {
	_, err := s.c.do(context.WithoutCancel(ctx), request{
		method: http.MethodPatch,
		table:  tableRooms,
		query:  url.Values{"id": {eqID(id)}},
		body:   statusPatch{Status: string(model.StatusAvailable)},
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Int64("listing_id", id).Msg("release reservation after failed booking insert")
	}
}

func (s *Store) BookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	var rows []bookingRow
	q := url.Values{
		"select":  {"*"},
		"user_id": {eq(userID)},
		"order":   {"created_at.desc,id.desc"},
	}
	if err := s.c.getRows(ctx, tableBookings, q, &rows); err != nil {
		return nil, mapErr(err)
	}
	out := make([]model.Booking, 0, len(rows))
	for _, r := range rows {
		out = append(out, toBooking(r))
	}
	return out, nil
}

func firstListing(raw []byte) (model.Listing, error) {
	var rows []roomRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return model.Listing{}, err
	}
	if len(rows) == 0 {
		return model.Listing{}, store.ErrNotFound
	}
	return toListing(rows[0]), nil
}

// mapErr translates PostgREST constraint errors into store errors.
func mapErr(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case "23505":
		return store.ErrDuplicate
	case "23503", "PGRST116":
		return store.ErrNotFound
	}
	return err
}
