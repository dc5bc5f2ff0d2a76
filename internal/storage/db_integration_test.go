//go:build integration

package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "mapty",
				"POSTGRES_PASSWORD": "mapty",
				"POSTGRES_DB":       "mapty",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://mapty:mapty@%s:%s/mapty?sslmode=disable", host, port.Port())
}

// TestPostgresContract runs the backend contract against a real PostgreSQL
// after applying the embedded migrations twice (the second run is a no-op).
func TestPostgresContract(t *testing.T) {
	dsn := startPostgres(t)

	require.NoError(t, RunMigrations(dsn))
	require.NoError(t, RunMigrations(dsn))

	db, err := New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	exerciseKV(t, db)
}
