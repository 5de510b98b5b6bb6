package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// schema is applied in order by Migrate. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS completed_topics (
		user_id      TEXT        NOT NULL,
		topic        TEXT        NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, topic)
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_results (
		id              UUID        PRIMARY KEY,
		user_id         TEXT        NOT NULL,
		topic           TEXT        NOT NULL,
		difficulty      TEXT        NOT NULL,
		score           INT         NOT NULL CHECK (score >= 0),
		total_questions INT         NOT NULL CHECK (total_questions > 0 AND score <= total_questions),
		passed          BOOLEAN     NOT NULL,
		elapsed_ns      BIGINT      NOT NULL DEFAULT 0,
		completed_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_results_user_completed
		ON quiz_results (user_id, completed_at DESC)`,
	`CREATE TABLE IF NOT EXISTS quiz_events (
		id         BIGSERIAL   PRIMARY KEY,
		user_id    TEXT        NOT NULL,
		session_id TEXT,
		event_type TEXT        NOT NULL,
		data       JSONB       NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_events_user ON quiz_events (user_id, created_at)`,
}

// Migrate creates the progress, result and event tables if they do not exist.
// The statements run in one transaction.
func (db *DB) Migrate(ctx context.Context) error {
	err := db.InTx(ctx, func(tx pgx.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema statement %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("database schema applied", "statements", len(schema))
	return nil
}
