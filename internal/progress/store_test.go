package progress_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/progress"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

// runStoreTests exercises the behaviour every Store implementation must share.
func runStoreTests(t *testing.T, store progress.Store) {
	t.Helper()
	ctx := context.Background()
	user := "user-" + uuid.NewString()

	t.Run("empty user", func(t *testing.T) {
		topics, err := store.LoadCompleted(ctx, user)
		if err != nil {
			t.Fatalf("LoadCompleted() error = %v", err)
		}
		if len(topics) != 0 {
			t.Errorf("LoadCompleted() = %v, want empty", topics)
		}
		results, err := store.ListResults(ctx, user)
		if err != nil {
			t.Fatalf("ListResults() error = %v", err)
		}
		if len(results) != 0 {
			t.Errorf("ListResults() = %v, want empty", results)
		}
	})

	t.Run("save is additive and idempotent", func(t *testing.T) {
		if err := store.SaveCompleted(ctx, user, []curriculum.Topic{"Geometry"}); err != nil {
			t.Fatalf("SaveCompleted() error = %v", err)
		}
		if err := store.SaveCompleted(ctx, user, []curriculum.Topic{"Algebra", "Geometry"}); err != nil {
			t.Fatalf("SaveCompleted() error = %v", err)
		}
		topics, err := store.LoadCompleted(ctx, user)
		if err != nil {
			t.Fatalf("LoadCompleted() error = %v", err)
		}
		want := []curriculum.Topic{"Algebra", "Geometry"}
		if !slices.Equal(topics, want) {
			t.Errorf("LoadCompleted() = %v, want %v", topics, want)
		}
	})

	t.Run("users are isolated", func(t *testing.T) {
		topics, err := store.LoadCompleted(ctx, user+"-other")
		if err != nil {
			t.Fatalf("LoadCompleted() error = %v", err)
		}
		if len(topics) != 0 {
			t.Errorf("other user sees %v", topics)
		}
	})

	t.Run("results keep insertion order", func(t *testing.T) {
		base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		for i, topic := range []curriculum.Topic{"Algebra", "Geometry"} {
			r := quiz.Result{
				ID:             uuid.NewString(),
				UserID:         user,
				Topic:          topic,
				Difficulty:     curriculum.Easy,
				Score:          2 + i,
				TotalQuestions: 3,
				CompletedAt:    base.Add(time.Duration(i) * time.Minute),
				Elapsed:        90*time.Second + 123456789,
				Passed:         i == 1,
			}
			if err := store.AppendResult(ctx, r); err != nil {
				t.Fatalf("AppendResult() error = %v", err)
			}
		}

		results, err := store.ListResults(ctx, user)
		if err != nil {
			t.Fatalf("ListResults() error = %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("ListResults() len = %d, want 2", len(results))
		}
		first, second := results[0], results[1]
		if first.Topic != "Algebra" || second.Topic != "Geometry" {
			t.Errorf("order = [%s %s], want [Algebra Geometry]", first.Topic, second.Topic)
		}
		if first.Score != 2 || first.TotalQuestions != 3 || first.Passed {
			t.Errorf("first = %+v", first)
		}
		if !second.Passed {
			t.Error("second.Passed = false, want true")
		}
		if want := 90*time.Second + 123456789; first.Elapsed != want {
			t.Errorf("Elapsed = %v, want %v", first.Elapsed, want)
		}
		if !first.CompletedAt.Equal(base) {
			t.Errorf("CompletedAt = %v, want %v", first.CompletedAt, base)
		}
	})

	t.Run("clear keeps results", func(t *testing.T) {
		if err := store.ClearCompleted(ctx, user); err != nil {
			t.Fatalf("ClearCompleted() error = %v", err)
		}
		topics, err := store.LoadCompleted(ctx, user)
		if err != nil {
			t.Fatalf("LoadCompleted() error = %v", err)
		}
		if len(topics) != 0 {
			t.Errorf("LoadCompleted() after clear = %v", topics)
		}
		results, err := store.ListResults(ctx, user)
		if err != nil {
			t.Fatalf("ListResults() error = %v", err)
		}
		if len(results) != 2 {
			t.Errorf("ListResults() after clear len = %d, want 2", len(results))
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, progress.NewMemoryStore())
}

func TestMemoryStore_ListResultsReturnsCopy(t *testing.T) {
	store := progress.NewMemoryStore()
	ctx := context.Background()
	if err := store.AppendResult(ctx, quiz.Result{UserID: "u1", Score: 1}); err != nil {
		t.Fatalf("AppendResult() error = %v", err)
	}

	results, _ := store.ListResults(ctx, "u1")
	results[0].Score = 99

	again, _ := store.ListResults(ctx, "u1")
	if again[0].Score != 1 {
		t.Errorf("stored Score = %d, want 1", again[0].Score)
	}
}
