package progress

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

// SQLiteStore is a Store for single-device deployments. It expects the schema
// created by sqlite.Open.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed progress store.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) LoadCompleted(ctx context.Context, userID string) ([]curriculum.Topic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT topic FROM completed_topics WHERE user_id = ? ORDER BY topic ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query completed topics: %w", err)
	}
	defer rows.Close()

	var topics []curriculum.Topic
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("scan completed topic: %w", err)
		}
		topics = append(topics, curriculum.Topic(topic))
	}
	return topics, rows.Err()
}

func (s *SQLiteStore) SaveCompleted(ctx context.Context, userID string, topics []curriculum.Topic) error {
	if len(topics) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixNano()
	for _, t := range topics {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO completed_topics (user_id, topic, completed_at_unix_nano) VALUES (?, ?, ?)`,
			userID, string(t), now,
		); err != nil {
			return fmt.Errorf("insert completed topic: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ClearCompleted(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM completed_topics WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete completed topics: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendResult(ctx context.Context, r quiz.Result) error {
	passed := 0
	if r.Passed {
		passed = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quiz_results
		   (id, user_id, topic, difficulty, score, total_questions, passed, elapsed_ns, completed_at_unix_nano)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.UserID,
		string(r.Topic),
		string(r.Difficulty),
		r.Score,
		r.TotalQuestions,
		passed,
		r.Elapsed.Nanoseconds(),
		r.CompletedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListResults(ctx context.Context, userID string) ([]quiz.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, topic, difficulty, score, total_questions, passed, elapsed_ns, completed_at_unix_nano
		 FROM quiz_results
		 WHERE user_id = ?
		 ORDER BY rowid ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []quiz.Result
	for rows.Next() {
		var (
			r           quiz.Result
			topic       string
			difficulty  string
			passed      int
			elapsedNS   int64
			completedAt int64
		)
		if err := rows.Scan(&r.ID, &r.UserID, &topic, &difficulty, &r.Score, &r.TotalQuestions, &passed, &elapsedNS, &completedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Topic = curriculum.Topic(topic)
		r.Difficulty = curriculum.Difficulty(difficulty)
		r.Passed = passed == 1
		r.Elapsed = time.Duration(elapsedNS)
		r.CompletedAt = time.Unix(0, completedAt)
		results = append(results, r)
	}
	return results, rows.Err()
}
