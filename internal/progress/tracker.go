package progress

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

const defaultTimeout = 5 * time.Second

// TrackerConfig holds dependencies for a Tracker.
type TrackerConfig struct {
	Graph   *curriculum.Graph
	Store   Store
	Timeout time.Duration // per store call (default 5s)
}

// Tracker answers progress queries for users and derives the unlocked topic
// set from the graph. Writes for the same user are serialized.
type Tracker struct {
	graph   *curriculum.Graph
	store   Store
	timeout time.Duration

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	pending map[string]map[curriculum.Topic]bool
}

// NewTracker creates a progress tracker.
func NewTracker(cfg TrackerConfig) *Tracker {
	graph := cfg.Graph
	if graph == nil {
		graph = curriculum.DefaultGraph()
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Tracker{
		graph:   graph,
		store:   store,
		timeout: timeout,
		locks:   make(map[string]*sync.Mutex),
		pending: make(map[string]map[curriculum.Topic]bool),
	}
}

// Graph returns the topic graph used for unlock decisions.
func (t *Tracker) Graph() *curriculum.Graph {
	return t.graph
}

func (t *Tracker) userLock(userID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[userID] = l
	}
	return l
}

func (t *Tracker) pendingFor(userID string) []curriculum.Topic {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []curriculum.Topic
	for topic := range t.pending[userID] {
		out = append(out, topic)
	}
	return out
}

// CompletedTopics returns the user's completed set: everything persisted plus
// any completion whose write has not yet succeeded. The pending set is read
// before the store, so a completion saved concurrently is seen in one of them.
func (t *Tracker) CompletedTopics(ctx context.Context, userID string) (map[curriculum.Topic]bool, error) {
	pending := t.pendingFor(userID)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	stored, err := t.store.LoadCompleted(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "load completed topics", UserID: userID, Err: err}
	}

	completed := make(map[curriculum.Topic]bool, len(stored)+len(pending))
	for _, topic := range stored {
		completed[topic] = true
	}
	for _, topic := range pending {
		completed[topic] = true
	}
	return completed, nil
}

// MarkCompleted records topic as completed for the user. It is idempotent.
// When the write fails the completion stays in memory and is retried with the
// user's next write; the returned error is a *PersistenceError.
func (t *Tracker) MarkCompleted(ctx context.Context, userID string, topic curriculum.Topic) error {
	l := t.userLock(userID)
	l.Lock()
	defer l.Unlock()

	t.mu.Lock()
	set, ok := t.pending[userID]
	if !ok {
		set = make(map[curriculum.Topic]bool)
		t.pending[userID] = set
	}
	set[topic] = true
	t.mu.Unlock()

	topics := t.pendingFor(userID)
	slices.Sort(topics)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.store.SaveCompleted(ctx, userID, topics); err != nil {
		slog.Warn("persisting completed topics failed",
			"user_id", userID,
			"topics", topics,
			"error", err,
		)
		return &PersistenceError{Op: "save completed topics", UserID: userID, Err: err}
	}

	t.mu.Lock()
	delete(t.pending, userID)
	t.mu.Unlock()

	slog.Info("topic completed", "user_id", userID, "topic", topic)
	return nil
}

// UnlockedTopics returns every topic whose prerequisites are all completed,
// in graph order. It is recomputed on each call.
func (t *Tracker) UnlockedTopics(ctx context.Context, userID string) ([]curriculum.Topic, error) {
	completed, err := t.CompletedTopics(ctx, userID)
	if err != nil {
		return nil, err
	}

	var unlocked []curriculum.Topic
	for _, topic := range t.graph.Topics() {
		if t.graph.IsUnlocked(topic, completed) {
			unlocked = append(unlocked, topic)
		}
	}
	return unlocked, nil
}

// IsUnlocked reports whether topic is currently unlocked for the user.
func (t *Tracker) IsUnlocked(ctx context.Context, userID string, topic curriculum.Topic) (bool, error) {
	completed, err := t.CompletedTopics(ctx, userID)
	if err != nil {
		return false, err
	}
	return t.graph.IsUnlocked(topic, completed), nil
}

// AvailableNextTopics returns the topics justCompleted unlocks that the user
// has not completed yet.
func (t *Tracker) AvailableNextTopics(ctx context.Context, userID string, justCompleted curriculum.Topic) ([]curriculum.Topic, error) {
	completed, err := t.CompletedTopics(ctx, userID)
	if err != nil {
		return nil, err
	}

	var next []curriculum.Topic
	for _, topic := range t.graph.Unlocks(justCompleted) {
		if !completed[topic] {
			next = append(next, topic)
		}
	}
	return next, nil
}

// Reset clears the user's completed topics. The result log is kept.
func (t *Tracker) Reset(ctx context.Context, userID string) error {
	l := t.userLock(userID)
	l.Lock()
	defer l.Unlock()

	t.mu.Lock()
	delete(t.pending, userID)
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.store.ClearCompleted(ctx, userID); err != nil {
		return &PersistenceError{Op: "clear completed topics", UserID: userID, Err: err}
	}
	slog.Info("progress reset", "user_id", userID)
	return nil
}

// AppendResult adds result to the user's result log.
func (t *Tracker) AppendResult(ctx context.Context, result quiz.Result) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.store.AppendResult(ctx, result); err != nil {
		return &PersistenceError{Op: "append result", UserID: result.UserID, Err: err}
	}
	return nil
}

// Results returns the user's result log in insertion order.
func (t *Tracker) Results(ctx context.Context, userID string) ([]quiz.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	results, err := t.store.ListResults(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "list results", UserID: userID, Err: err}
	}
	return results, nil
}
