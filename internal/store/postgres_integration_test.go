//go:build integration

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/yourorg/roomeasy-api/internal/model"
)

func startPostgres(t *testing.T) *Postgres {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "roomeasy",
			"POSTGRES_PASSWORD": "roomeasy",
			"POSTGRES_DB":       "roomeasy",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(90 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://roomeasy:roomeasy@%s:%s/roomeasy?sslmode=disable", host, port.Port())
	pg, err := Open(dsn, 4)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = pg.Close() })
	if err := pg.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pg
}

func TestPostgresStore(t *testing.T) {
	pg := startPostgres(t)
	exerciseStore(t, pg,
		model.UserProfile{ID: uuid.NewString(), Email: "owner@example.com", PasswordHash: "x"},
		model.UserProfile{ID: uuid.NewString(), Email: "other@example.com", PasswordHash: "x"},
	)
}

func TestPostgresMigrateIdempotent(t *testing.T) {
	pg := startPostgres(t)
	if err := pg.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
