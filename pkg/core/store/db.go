// Package store persists finished analysis reports in Postgres. Storage is
// optional: the pipeline runs without it, reports just aren't kept.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB opens the process-wide connection pool from DATABASE_URL. Later
// calls are no-ops; the first error sticks.
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL is not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("invalid DATABASE_URL: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			fmt.Printf("[STORE] report database pool ready\n")
		}
	})
	return err
}

// GetPool returns the shared pool, nil when InitDB never succeeded.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close shuts the pool down. Safe without a prior InitDB.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
