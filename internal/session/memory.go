package session

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/yourorg/roomeasy-api/internal/model"
)

// MemoryStore is the fallback when Redis is not configured. Reads extend
// the expiry like the Redis store does.
type MemoryStore struct {
	cache *ttlcache.Cache[string, model.ViewerSession]
}

func NewMemory(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: ttlcache.New(ttlcache.WithTTL[string, model.ViewerSession](ttl))}
}

func (s *MemoryStore) Load(_ context.Context, id string) (model.ViewerSession, error) {
	item := s.cache.Get(id)
	if item == nil {
		return model.ViewerSession{}, ErrNotFound
	}
	return copySession(item.Value()), nil
}

func (s *MemoryStore) Save(_ context.Context, sess model.ViewerSession) error {
	s.cache.Set(sess.ID, copySession(sess), ttlcache.DefaultTTL)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

// Serve runs the expiry janitor until ctx ends.
func (s *MemoryStore) Serve(ctx context.Context) error {
	go s.cache.Start()
	<-ctx.Done()
	s.cache.Stop()
	return ctx.Err()
}

func copySession(s model.ViewerSession) model.ViewerSession {
	s.RecentlyViewed = append([]int64(nil), s.RecentlyViewed...)
	s.Flash = append([]model.Flash(nil), s.Flash...)
	return s
}
