// Package progress tracks which topics each user has completed and keeps the
// append-only log of quiz results.
package progress

import (
	"context"
	"slices"
	"sync"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

// Store persists per-user progress. Implementations must make SaveCompleted
// additive and idempotent.
type Store interface {
	LoadCompleted(ctx context.Context, userID string) ([]curriculum.Topic, error)
	SaveCompleted(ctx context.Context, userID string, topics []curriculum.Topic) error
	ClearCompleted(ctx context.Context, userID string) error
	AppendResult(ctx context.Context, result quiz.Result) error
	ListResults(ctx context.Context, userID string) ([]quiz.Result, error)
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	completed map[string]map[curriculum.Topic]bool
	results   map[string][]quiz.Result
	mu        sync.RWMutex
}

// NewMemoryStore creates a new in-memory progress store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		completed: make(map[string]map[curriculum.Topic]bool),
		results:   make(map[string][]quiz.Result),
	}
}

func (s *MemoryStore) LoadCompleted(_ context.Context, userID string) ([]curriculum.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topics := make([]curriculum.Topic, 0, len(s.completed[userID]))
	for t := range s.completed[userID] {
		topics = append(topics, t)
	}
	slices.Sort(topics)
	return topics, nil
}

func (s *MemoryStore) SaveCompleted(_ context.Context, userID string, topics []curriculum.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.completed[userID]
	if !ok {
		set = make(map[curriculum.Topic]bool)
		s.completed[userID] = set
	}
	for _, t := range topics {
		set[t] = true
	}
	return nil
}

func (s *MemoryStore) ClearCompleted(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.completed, userID)
	return nil
}

func (s *MemoryStore) AppendResult(_ context.Context, result quiz.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.UserID] = append(s.results[result.UserID], result)
	return nil
}

func (s *MemoryStore) ListResults(_ context.Context, userID string) ([]quiz.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.results[userID]), nil
}
