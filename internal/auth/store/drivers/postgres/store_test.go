package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/store"
	"github.com/aussiebroadwan/ccauth/internal/auth/store/storetest"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway postgres container. The test is skipped
// with -short or when no container runtime is reachable.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres driver test needs a container runtime")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "ccauth",
			"POSTGRES_PASSWORD": "ccauth",
			"POSTGRES_DB":       "ccauth",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://ccauth:ccauth@%s:%s/ccauth?sslmode=disable", host, port.Port())
}

func TestPostgresStore(t *testing.T) {
	dsn := startPostgres(t)

	open := func(t *testing.T) store.Store {
		t.Helper()
		ctx := context.Background()

		s, err := NewStore(ctx, dsn)
		require.NoError(t, err)
		require.NoError(t, s.ApplyMigrations())
		_, err = s.pool.Exec(ctx, `TRUNCATE tokens, clients`)
		require.NoError(t, err)

		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	storetest.Run(t, open)

	t.Run("migrations are idempotent", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.ApplyMigrations())
	})
}
