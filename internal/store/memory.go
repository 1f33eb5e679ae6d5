package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yourorg/roomeasy-api/internal/model"
)

// Memory is a process-local Store for development and tests.
type Memory struct {
	mu       sync.RWMutex
	nextID   int64
	nextBook int64
	rooms    map[int64]model.Listing
	users    map[string]model.UserProfile // by lower-cased email
	wishes   map[string]map[int64]time.Time
	bookings []model.Booking
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		rooms:  make(map[int64]model.Listing),
		users:  make(map[string]model.UserProfile),
		wishes: make(map[string]map[int64]time.Time),
		now:    time.Now,
	}
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) sorted(keep func(model.Listing) bool) []model.Listing {
	var out []model.Listing
	for _, l := range m.rooms {
		if keep(l) {
			out = append(out, clone(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) FetchAvailableListings(context.Context) ([]model.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(model.Listing.Available), nil
}

func (m *Memory) ListingsByOwner(_ context.Context, ownerID string) ([]model.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.sorted(func(l model.Listing) bool { return l.OwnerID == ownerID })
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (m *Memory) GetListing(_ context.Context, id int64) (model.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.rooms[id]
	if !ok {
		return model.Listing{}, ErrNotFound
	}
	return clone(l), nil
}

func (m *Memory) CreateListing(_ context.Context, l model.Listing) (model.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	l.ID = m.nextID
	l.CreatedAt = m.now()
	if l.Status == "" {
		l.Status = model.StatusAvailable
	}
	if l.Kind == "" {
		l.Kind = model.KindRoom
	}
	m.rooms[l.ID] = clone(l)
	return l, nil
}

func (m *Memory) UpdateListing(_ context.Context, ownerID string, l model.Listing) (model.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, err := m.owned(l.ID, ownerID)
	if err != nil {
		return l, err
	}
	l.OwnerID, l.Status, l.CreatedAt = cur.OwnerID, cur.Status, cur.CreatedAt
	m.rooms[l.ID] = clone(l)
	return l, nil
}

func (m *Memory) DeleteListing(_ context.Context, ownerID string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.owned(id, ownerID); err != nil {
		return err
	}
	delete(m.rooms, id)
	for _, w := range m.wishes {
		delete(w, id)
	}
	return nil
}

func (m *Memory) owned(id int64, ownerID string) (model.Listing, error) {
	cur, ok := m.rooms[id]
	if !ok {
		return cur, ErrNotFound
	}
	if cur.OwnerID != ownerID {
		return cur, ErrNotOwner
	}
	return cur, nil
}

func (m *Memory) CreateUser(_ context.Context, u model.UserProfile) (model.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	if _, exists := m.users[u.Email]; exists {
		return u, ErrDuplicate
	}
	u.CreatedAt = m.now()
	m.users[u.Email] = u
	return u, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (model.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return u, ErrNotFound
	}
	return u, nil
}

func (m *Memory) AddWishlist(_ context.Context, userID string, listingID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[listingID]; !ok {
		return ErrNotFound
	}
	w, ok := m.wishes[userID]
	if !ok {
		w = make(map[int64]time.Time)
		m.wishes[userID] = w
	}
	if _, liked := w[listingID]; !liked {
		w[listingID] = m.now()
	}
	return nil
}

func (m *Memory) RemoveWishlist(_ context.Context, userID string, listingID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.wishes[userID], listingID)
	return nil
}

func (m *Memory) IsWishlisted(_ context.Context, userID string, listingID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.wishes[userID][listingID]
	return ok, nil
}

func (m *Memory) Wishlist(_ context.Context, userID string) ([]model.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w := m.wishes[userID]
	out := m.sorted(func(l model.Listing) bool { _, ok := w[l.ID]; return ok })
	sort.SliceStable(out, func(i, j int) bool { return w[out[i].ID].After(w[out[j].ID]) })
	return out, nil
}

func (m *Memory) CreateBooking(_ context.Context, b model.Booking) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.rooms[b.ListingID]
	if !ok {
		return b, ErrNotFound
	}
	if b.Kind.Reserves() && l.Status == model.StatusBooked {
		return b, ErrAlreadyBooked
	}
	m.nextBook++
	b.ID = m.nextBook
	b.CreatedAt = m.now()
	m.bookings = append(m.bookings, b)
	if b.Kind.Reserves() {
		l.Status = model.StatusBooked
		m.rooms[l.ID] = l
	}
	return b, nil
}

func (m *Memory) BookingsByUser(_ context.Context, userID string) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Booking
	for i := len(m.bookings) - 1; i >= 0; i-- {
		if m.bookings[i].UserID == userID {
			out = append(out, m.bookings[i])
		}
	}
	return out, nil
}

func clone(l model.Listing) model.Listing {
	l.Gallery = append([]string(nil), l.Gallery...)
	l.Amenities = append([]string(nil), l.Amenities...)
	return l
}
