//go:build integration

package session

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/yourorg/roomeasy-api/internal/model"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	st := NewRedis(endpoint, "", 0, time.Minute)
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	sess := model.ViewerSession{ID: "abc", UserID: "u1", RecentlyViewed: []int64{4, 2}}
	if err := st.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Load(ctx, "abc")
	if err != nil || got.UserID != "u1" || len(got.RecentlyViewed) != 2 {
		t.Fatalf("load = %+v, %v", got, err)
	}
	ttl, _ := st.Rdb.TTL(ctx, keyPrefix+"abc").Result()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v", ttl)
	}
	if err := st.Delete(ctx, "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Load(ctx, "abc"); err != ErrNotFound {
		t.Fatalf("after delete err = %v", err)
	}
}
