// Package dbtest provides a shared pool for database-backed tests. Tests
// using it skip unless TEST_DATABASE_URL points at a disposable Postgres.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/albapepper/diamondstats/internal/config"
	"github.com/albapepper/diamondstats/internal/db"
)

// NewPool connects to the test database and ensures the schema exists.
// The pool is closed when the test finishes. Test data is not truncated;
// tests must use identifiers unique to themselves.
func NewPool(t *testing.T) *db.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := &config.Config{
		DatabaseURL:    url,
		DBPoolMinConns: 1,
		DBPoolMaxConns: 4,
		DBPoolMaxLife:  30 * time.Minute,
	}
	pool, err := db.New(ctx, cfg)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile(schemaPath(t))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	return pool
}

func schemaPath(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate schema.sql")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "schema.sql")
}
