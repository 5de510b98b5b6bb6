package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

// PostgresStore is a PostgreSQL-backed Store. It expects the schema applied
// by database.Migrate.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed progress store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) LoadCompleted(ctx context.Context, userID string) ([]curriculum.Topic, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT topic
		 FROM completed_topics
		 WHERE user_id = $1
		 ORDER BY topic ASC`,
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed topics: %w", err)
	}
	return topics, nil
}

func (s *PostgresStore) SaveCompleted(ctx context.Context, userID string, topics []curriculum.Topic) error {
	if userID == "" {
		return fmt.Errorf("user_id is required")
	}
	if len(topics) == 0 {
		return nil
	}

	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = string(t)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO completed_topics (user_id, topic)
		 SELECT $1, unnest($2::text[])
		 ON CONFLICT (user_id, topic) DO NOTHING`,
		userID,
		names,
	)
	if err != nil {
		return fmt.Errorf("insert completed topics: %w", err)
	}
	return nil
}

func (s *PostgresStore) ClearCompleted(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM completed_topics WHERE user_id = $1`,
		userID,
	); err != nil {
		return fmt.Errorf("delete completed topics: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendResult(ctx context.Context, r quiz.Result) error {
	if r.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	completedAt := r.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_results
		   (id, user_id, topic, difficulty, score, total_questions, passed, elapsed_ns, completed_at)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID,
		r.UserID,
		string(r.Topic),
		string(r.Difficulty),
		r.Score,
		r.TotalQuestions,
		r.Passed,
		r.Elapsed.Nanoseconds(),
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListResults(ctx context.Context, userID string) ([]quiz.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, user_id, topic, difficulty, score, total_questions, passed, elapsed_ns, completed_at
		 FROM quiz_results
		 WHERE user_id = $1
		 ORDER BY completed_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []quiz.Result
	for rows.Next() {
		var (
			r          quiz.Result
			topic      string
			difficulty string
			elapsedNS  int64
		)
		if err := rows.Scan(
			&r.ID,
			&r.UserID,
			&topic,
			&difficulty,
			&r.Score,
			&r.TotalQuestions,
			&r.Passed,
			&elapsedNS,
			&r.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Topic = curriculum.Topic(topic)
		r.Difficulty = curriculum.Difficulty(difficulty)
		r.Elapsed = time.Duration(elapsedNS)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}
