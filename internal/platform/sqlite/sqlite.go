// Package sqlite opens the embedded SQLite database used for single-device
// deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS completed_topics (
		user_id                TEXT    NOT NULL,
		topic                  TEXT    NOT NULL,
		completed_at_unix_nano INTEGER NOT NULL,
		PRIMARY KEY (user_id, topic)
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_results (
		id                     TEXT    PRIMARY KEY,
		user_id                TEXT    NOT NULL,
		topic                  TEXT    NOT NULL,
		difficulty             TEXT    NOT NULL,
		score                  INTEGER NOT NULL,
		total_questions        INTEGER NOT NULL,
		passed                 INTEGER NOT NULL,
		elapsed_ns             INTEGER NOT NULL,
		completed_at_unix_nano INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_results_user ON quiz_results (user_id)`,
}

// Open connects to the SQLite database at dsn, applies pragmas and creates the
// schema. File-backed databases get their parent directory created.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := ensureDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema statement %d: %w", i, err)
		}
	}
	return db, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func ensureDir(dsn string) error {
	if dsn == ":memory:" || filepath.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	return nil
}
