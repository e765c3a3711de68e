// Package db opens the two stores the pipeline can talk to: the sqlite
// study file holding intermediate datasets, and an optional Postgres
// warehouse for published datasets.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

// OpenStudyFile opens (creating if needed) the sqlite file that carries the
// intermediate datasets between pipeline stages.
func OpenStudyFile(path string) (*sql.DB, error) {
	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open study file %s: %w", path, err)
	}
	// Stage repos share one file; serialize writers.
	sdb.SetMaxOpenConns(1)
	if _, err := sdb.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("configure study file: %w", err)
	}
	return sdb, nil
}

// NewPool connects a pgx pool to the warehouse database and verifies the
// connection.
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect warehouse: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}
	return pool, nil
}
