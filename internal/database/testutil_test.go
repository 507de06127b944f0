package database

import (
	"context"
	"os"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// testPool connects to the database named by DATABASE_URL, or skips the
// test when the variable is unset so the package stays runnable without a
// live Postgres.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// nextID hands out ids unique within the test run, starting far from
// anything the seed data uses.
var testIDCounter atomic.Int64

func nextID() int64 {
	return 500_000 + testIDCounter.Add(1)
}
