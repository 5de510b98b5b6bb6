package quiz_test

import (
	"errors"
	"testing"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

func TestResult_Percentage(t *testing.T) {
	tests := []struct {
		score, total, want int
	}{
		{2, 3, 66},
		{3, 3, 100},
		{0, 5, 0},
		{1, 7, 14},
		{0, 0, 0},
	}

	for _, tt := range tests {
		r := quiz.Result{Score: tt.score, TotalQuestions: tt.total}
		if got := r.Percentage(); got != tt.want {
			t.Errorf("Percentage(%d/%d) = %d, want %d", tt.score, tt.total, got, tt.want)
		}
	}
}

func TestNewResult_ActiveSession(t *testing.T) {
	s, _ := quiz.NewSession("u", "Algebra", curriculum.Easy, threeQuestions())

	_, err := quiz.NewResult(s, "u", quiz.DefaultPassPolicy(), time.Now())
	if !errors.Is(err, quiz.ErrSessionActive) {
		t.Errorf("NewResult() error = %v, want ErrSessionActive", err)
	}
}

func TestNewResult_Snapshot(t *testing.T) {
	s, _ := quiz.NewSession("u", "Algebra", curriculum.Easy, threeQuestions())
	for !s.IsCompleted() {
		_ = s.SubmitAnswer(s.CurrentQuestion().CorrectAnswer)
		_ = s.Advance()
	}

	completedAt := s.StartedAt.Add(90 * time.Second)
	res, err := quiz.NewResult(s, "u", quiz.PassPolicy{Mode: quiz.PassStrict}, completedAt)
	if err != nil {
		t.Fatalf("NewResult() error = %v", err)
	}
	if res.ID == "" {
		t.Error("ID should be set")
	}
	if res.Topic != "Algebra" || res.Difficulty != curriculum.Easy {
		t.Errorf("Topic/Difficulty = %s/%s", res.Topic, res.Difficulty)
	}
	if res.Elapsed != 90*time.Second {
		t.Errorf("Elapsed = %v, want 90s", res.Elapsed)
	}
	if !res.Passed {
		t.Error("perfect score should pass strict policy")
	}
}
