// Package dbtest opens throwaway stores for integration tests.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gomantics/repograph/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// EnvDSN names the variable holding the test database DSN.
const EnvDSN = "REPOGRAPH_TEST_DSN"

// Open returns a store bound to a fresh schema that is dropped when the test ends.
// The test is skipped when EnvDSN is unset.
func Open(t testing.TB) *db.Store {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set, skipping store integration test", EnvDSN)
	}

	ctx := context.Background()
	schema := fmt.Sprintf("repograph_test_%d", time.Now().UnixNano())

	admin, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	defer admin.Close(ctx)

	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+pgx.Identifier{schema}.Sanitize()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("failed to parse test dsn: %v", err)
	}
	poolConfig.ConnConfig.RuntimeParams["search_path"] = schema

	s, err := db.OpenWithConfig(ctx, zap.NewNop(), poolConfig)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()

		conn, err := pgx.Connect(context.Background(), dsn)
		if err != nil {
			return
		}
		defer conn.Close(context.Background())
		conn.Exec(context.Background(), "DROP SCHEMA "+pgx.Identifier{schema}.Sanitize()+" CASCADE")
	})

	return s
}
