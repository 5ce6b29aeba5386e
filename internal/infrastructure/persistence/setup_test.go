package persistence_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// requirePostgres mirrors the teacher's own skip-if-unavailable
// convention (modules/bichat/infrastructure/persistence/setup_test.go)
// rather than failing the suite when no database is reachable: these
// repositories are exercised against the schema in migrations/, which
// isn't applied in this sandboxed environment.
func requirePostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("PERSISTSVC_TEST_DATABASE_CONNECTION")
	if dsn == "" {
		t.Skip("PERSISTSVC_TEST_DATABASE_CONNECTION not set, skipping repository integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("failed to connect to postgres: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("postgres not reachable: %v", err)
	}
	return pool
}
