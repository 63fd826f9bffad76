// Package postgres opens the shared database handle and keeps the schema in
// step with the stores that use it.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects and verifies the connection. The returned handle is shared
// by every postgres store.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables the stores expect. Statements are
// idempotent so repeated startups are safe.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id          UUID PRIMARY KEY,
			title       TEXT NOT NULL,
			created_by  UUID,
			anchor_lon  DOUBLE PRECISION,
			anchor_lat  DOUBLE PRECISION,
			radius_m    DOUBLE PRECISION NOT NULL,
			active      BOOLEAN NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			ended_at    TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS identities (
			id          UUID PRIMARY KEY,
			name        TEXT NOT NULL,
			descriptor  DOUBLE PRECISION[]
		)`,
		`CREATE TABLE IF NOT EXISTS attendance_records (
			id          UUID PRIMARY KEY,
			student_id  UUID NOT NULL,
			session_id  UUID NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			lon         DOUBLE PRECISION NOT NULL,
			lat         DOUBLE PRECISION NOT NULL,
			verified    BOOLEAN NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS attendance_records_student_idx
			ON attendance_records (student_id, recorded_at DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
