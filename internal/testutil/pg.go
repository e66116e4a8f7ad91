package testutil

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGContainer is a connection to the Postgres named by TEST_DATABASE_URL.
type PGContainer struct {
	Pool    *pgxpool.Pool
	ConnURL string
}

// StartPostgresForTestMain connects to TEST_DATABASE_URL for a package's
// TestMain. It exits the process when the variable is unset or the database
// is unreachable; run integration tests through cmd/testpg to get one.
func StartPostgresForTestMain(ctx context.Context) (*PGContainer, func()) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		fmt.Fprintln(os.Stderr, "TEST_DATABASE_URL is not set; run via: go run ./internal/testutil/cmd/testpg -- go test -tags=integration ./...")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connecting to test database: %v\n", err)
		os.Exit(1)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		fmt.Fprintf(os.Stderr, "pinging test database: %v\n", err)
		os.Exit(1)
	}
	return &PGContainer{Pool: pool, ConnURL: url}, pool.Close
}

// ResetSchema drops and recreates the public schema.
func (pg *PGContainer) ResetSchema(ctx context.Context) error {
	_, err := pg.Pool.Exec(ctx, "DROP SCHEMA public CASCADE; CREATE SCHEMA public")
	return err
}
