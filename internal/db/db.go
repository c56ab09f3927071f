// Package db provides optional PostgreSQL recording of scrape runs and
// district results.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HassanOPFT/apartments-scraper/internal/results"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the recording tables when they do not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS scrape_runs (
			id UUID PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'running',
			districts_succeeded INT NOT NULL DEFAULT 0,
			districts_failed INT NOT NULL DEFAULT 0,
			started_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS district_results (
			run_id UUID NOT NULL REFERENCES scrape_runs(id) ON DELETE CASCADE,
			district_id INT NOT NULL,
			district_name TEXT NOT NULL,
			family_type TEXT NOT NULL,
			total_fetched INT NOT NULL,
			document JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (run_id, district_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateRun inserts a new scrape run record.
func (db *DB) CreateRun(ctx context.Context, runID uuid.UUID, startedAt time.Time) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO scrape_runs (id, status, started_at) VALUES ($1, 'running', $2)`,
		runID, startedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks a scrape run as finished with its district counts.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, succeeded, failed int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE scrape_runs
		 SET status = $1, districts_succeeded = $2, districts_failed = $3, completed_at = NOW()
		 WHERE id = $4`,
		status, succeeded, failed, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveDistrictResult stores one district's result document. Re-runs within
// the same scrape run leave the first document in place.
func (db *DB) SaveDistrictResult(ctx context.Context, runID uuid.UUID, doc *results.Document) error {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO district_results (run_id, district_id, district_name, family_type, total_fetched, document)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (run_id, district_id) DO NOTHING`,
		runID, doc.Metadata.DistrictID, doc.Metadata.DistrictName,
		doc.Metadata.FamilyType, doc.Metadata.TotalFetched, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save district result %s: %w", doc.Metadata.DistrictName, err)
	}
	return nil
}
