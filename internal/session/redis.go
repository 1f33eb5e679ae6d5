package session

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/yourorg/roomeasy-api/internal/model"
)

const keyPrefix = "sess:"

// RedisStore keeps sessions as JSON strings with a sliding TTL.
type RedisStore struct {
	Rdb *redis.Client
	ttl time.Duration
}

func NewRedis(addr, password string, db int, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	return &RedisStore{Rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.Rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error { return s.Rdb.Close() }

func (s *RedisStore) Load(ctx context.Context, id string) (model.ViewerSession, error) {
	var sess model.ViewerSession
	raw, err := s.Rdb.GetEx(ctx, keyPrefix+id, s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return sess, ErrNotFound
	}
	if err != nil {
		return sess, err
	}
	if err := json.Unmarshal(raw, &sess); err != nil {
		return sess, err
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess model.ViewerSession) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.Rdb.Set(ctx, keyPrefix+sess.ID, raw, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.Rdb.Del(ctx, keyPrefix+id).Err()
}
