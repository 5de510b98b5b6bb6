package quiz

import (
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

// Result is the immutable outcome of a completed session.
type Result struct {
	ID             string                `json:"id"`
	UserID         string                `json:"userId"`
	Topic          curriculum.Topic      `json:"topic"`
	Difficulty     curriculum.Difficulty `json:"difficulty"`
	Score          int                   `json:"score"`
	TotalQuestions int                   `json:"totalQuestions"`
	CompletedAt    time.Time             `json:"completedAt"`
	Elapsed        time.Duration         `json:"elapsed"`
	Passed         bool                  `json:"passed"`
}

// Percentage returns Score*100/TotalQuestions using integer division.
func (r Result) Percentage() int {
	if r.TotalQuestions == 0 {
		return 0
	}
	return r.Score * 100 / r.TotalQuestions
}

// NewResult snapshots a completed session. It returns ErrSessionActive when
// the session is still accepting answers.
func NewResult(s *Session, userID string, policy PassPolicy, completedAt time.Time) (Result, error) {
	if !s.IsCompleted() {
		return Result{}, ErrSessionActive
	}

	elapsed := s.Elapsed(completedAt)
	total := s.Len()
	return Result{
		ID:             uuid.NewString(),
		UserID:         userID,
		Topic:          s.Topic,
		Difficulty:     s.Difficulty,
		Score:          s.Score(),
		TotalQuestions: total,
		CompletedAt:    completedAt,
		Elapsed:        elapsed,
		Passed:         policy.Passed(s.Score(), total),
	}, nil
}
