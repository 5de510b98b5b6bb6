// Package engine orchestrates quiz sessions: it draws questions from the
// repository, scores finished sessions, records results and advances the
// user's topic progression.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/progress"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

var (
	// ErrNoQuestionsAvailable is returned when no question matches the
	// requested topic and difficulty.
	ErrNoQuestionsAvailable = errors.New("no questions available")
	// ErrTopicLocked is returned when RequireUnlocked is set and the topic's
	// prerequisites are not all completed.
	ErrTopicLocked = errors.New("topic is locked")
)

// EngineConfig holds dependencies for the quiz engine.
type EngineConfig struct {
	Repository *curriculum.Repository
	Tracker    *progress.Tracker
	Policy     quiz.PassPolicy // default: 70% threshold
	Events     EventLogger

	EndOnWrongAnswer bool // a wrong or missing answer at Advance ends the session
	AllowEarlyFinish bool // FinishQuiz may complete an active session
	RequireUnlocked  bool // StartQuiz refuses locked topics

	Now     func() time.Time
	Shuffle func(n int, swap func(i, j int))
}

// Engine is the quiz orchestrator.
type Engine struct {
	repo    *curriculum.Repository
	tracker *progress.Tracker
	policy  quiz.PassPolicy
	events  EventLogger

	endOnWrongAnswer bool
	allowEarlyFinish bool
	requireUnlocked  bool

	now     func() time.Time
	shuffle func(n int, swap func(i, j int))

	observers observers
}

// Outcome is what FinishQuiz reports back to the caller.
type Outcome struct {
	Result     quiz.Result        `json:"result"`
	NextTopics []curriculum.Topic `json:"nextTopics"`
}

// ResultFilter narrows GetResults. Zero fields match everything.
type ResultFilter struct {
	Topic      curriculum.Topic
	Difficulty curriculum.Difficulty
}

// Stats summarizes a user's result log.
type Stats struct {
	Attempts          int `json:"attempts"`
	Passed            int `json:"passed"`
	BestPercentage    int `json:"bestPercentage"`
	AveragePercentage int `json:"averagePercentage"`
	TotalQuestions    int `json:"totalQuestions"`
	TotalCorrect      int `json:"totalCorrect"`
}

// NewEngine creates a new quiz engine.
func NewEngine(cfg EngineConfig) *Engine {
	tracker := cfg.Tracker
	if tracker == nil {
		tracker = progress.NewTracker(progress.TrackerConfig{})
	}
	repo := cfg.Repository
	if repo == nil {
		repo = curriculum.NewRepository(tracker.Graph(), nil)
	}
	policy := cfg.Policy
	if policy.Mode == "" {
		policy = quiz.DefaultPassPolicy()
	}
	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	shuffle := cfg.Shuffle
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	return &Engine{
		repo:             repo,
		tracker:          tracker,
		policy:           policy,
		events:           events,
		endOnWrongAnswer: cfg.EndOnWrongAnswer,
		allowEarlyFinish: cfg.AllowEarlyFinish,
		requireUnlocked:  cfg.RequireUnlocked,
		now:              now,
		shuffle:          shuffle,
	}
}

// Repository returns the question repository the engine draws from.
func (e *Engine) Repository() *curriculum.Repository {
	return e.repo
}

// Policy returns the pass policy applied by FinishQuiz.
func (e *Engine) Policy() quiz.PassPolicy {
	return e.policy
}

// Subscribe registers fn for unlock events. The returned func removes it.
func (e *Engine) Subscribe(fn func(UnlockEvent)) (unsubscribe func()) {
	return e.observers.add(fn)
}

// StartQuiz creates a session over every matching question in random order.
// An empty difficulty matches all levels.
func (e *Engine) StartQuiz(ctx context.Context, userID string, topic curriculum.Topic, difficulty curriculum.Difficulty) (*quiz.Session, error) {
	if e.requireUnlocked {
		ok, err := e.tracker.IsUnlocked(ctx, userID, topic)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTopicLocked, topic)
		}
	}

	questions := e.repo.QuestionsFor(topic, difficulty)
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: topic %s, difficulty %q", ErrNoQuestionsAvailable, topic, difficulty)
	}
	e.shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	s, err := quiz.NewSession(userID, topic, difficulty, questions)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.StartedAt = e.now()

	e.logEvent(Event{
		SessionID: s.ID,
		UserID:    userID,
		EventType: EventQuizStarted,
		Data: map[string]any{
			"topic":      string(topic),
			"difficulty": string(difficulty),
			"questions":  s.Len(),
		},
		CreatedAt: s.StartedAt,
	})
	slog.Info("quiz started",
		"session_id", s.ID,
		"user_id", userID,
		"topic", topic,
		"difficulty", difficulty,
		"questions", s.Len(),
	)
	return s, nil
}

// SubmitAnswer records answer for the current question. It does not advance.
func (e *Engine) SubmitAnswer(s *quiz.Session, answer int) error {
	return s.SubmitAnswer(answer)
}

// Advance moves the session forward. With EndOnWrongAnswer, a wrong or
// missing answer completes the session instead.
func (e *Engine) Advance(s *quiz.Session) error {
	wrong := !s.LastAnswerCorrect()
	if err := s.Advance(); err != nil {
		return err
	}
	if e.endOnWrongAnswer && wrong && !s.IsCompleted() {
		s.Terminate()
		slog.Info("session ended on wrong answer", "session_id", s.ID, "user_id", s.UserID)
	}
	return nil
}

// FinishQuiz scores a completed session, appends the result to the user's log
// and, on a pass, marks the topic completed. A session yields one result;
// later calls return quiz.ErrSessionFinished. A persistence failure is
// returned as a *progress.PersistenceError alongside a usable Outcome, and no
// UnlockEvent is published for a completion that was not saved.
func (e *Engine) FinishQuiz(ctx context.Context, s *quiz.Session, userID string) (*Outcome, error) {
	if !s.IsCompleted() {
		if !e.allowEarlyFinish {
			return nil, quiz.ErrSessionActive
		}
		s.Terminate()
	}
	if err := s.MarkFinished(); err != nil {
		return nil, err
	}
	if userID == "" {
		userID = s.UserID
	}

	result, err := quiz.NewResult(s, userID, e.policy, e.now())
	if err != nil {
		return nil, fmt.Errorf("build result: %w", err)
	}
	outcome := &Outcome{Result: result, NextTopics: []curriculum.Topic{}}

	var errs []error
	if err := e.tracker.AppendResult(ctx, result); err != nil {
		slog.Warn("recording result failed", "user_id", userID, "session_id", s.ID, "error", err)
		errs = append(errs, err)
	}

	e.logEvent(Event{
		SessionID: s.ID,
		UserID:    userID,
		EventType: EventQuizFinished,
		Data: map[string]any{
			"topic":      string(result.Topic),
			"difficulty": string(result.Difficulty),
			"score":      result.Score,
			"total":      result.TotalQuestions,
			"passed":     result.Passed,
		},
		CreatedAt: result.CompletedAt,
	})
	slog.Info("quiz finished",
		"session_id", s.ID,
		"user_id", userID,
		"topic", result.Topic,
		"score", result.Score,
		"total", result.TotalQuestions,
		"passed", result.Passed,
	)

	if !result.Passed {
		return outcome, errors.Join(errs...)
	}

	alreadyCompleted := false
	if completed, err := e.tracker.CompletedTopics(ctx, userID); err == nil {
		alreadyCompleted = completed[result.Topic]
	}

	saved := true
	if err := e.tracker.MarkCompleted(ctx, userID, result.Topic); err != nil {
		errs = append(errs, err)
		saved = false
	}

	next, err := e.tracker.AvailableNextTopics(ctx, userID, result.Topic)
	if err != nil {
		errs = append(errs, err)
	} else {
		outcome.NextTopics = next
	}

	if saved && !alreadyCompleted {
		e.logEvent(Event{
			SessionID: s.ID,
			UserID:    userID,
			EventType: EventTopicCompleted,
			Data:      map[string]any{"topic": string(result.Topic), "unlocked": topicNames(next)},
			CreatedAt: result.CompletedAt,
		})
		e.observers.publish(UnlockEvent{
			UserID:         userID,
			Topic:          result.Topic,
			NewlyAvailable: slices.Clone(outcome.NextTopics),
			At:             result.CompletedAt,
		})
	}

	return outcome, errors.Join(errs...)
}

// GetResults returns the user's results matching filter, newest first.
func (e *Engine) GetResults(ctx context.Context, userID string, filter ResultFilter) ([]quiz.Result, error) {
	all, err := e.tracker.Results(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]quiz.Result, 0, len(all))
	for _, r := range all {
		if filter.Topic != "" && r.Topic != filter.Topic {
			continue
		}
		if filter.Difficulty != "" && r.Difficulty != filter.Difficulty {
			continue
		}
		results = append(results, r)
	}
	slices.SortStableFunc(results, func(a, b quiz.Result) int {
		return b.CompletedAt.Compare(a.CompletedAt)
	})
	return results, nil
}

// RetakeQuiz starts a fresh session on the same topic and difficulty as result.
func (e *Engine) RetakeQuiz(ctx context.Context, result quiz.Result) (*quiz.Session, error) {
	return e.StartQuiz(ctx, result.UserID, result.Topic, result.Difficulty)
}

// NextTopicQuiz starts a session on the first topic unlocked by result's topic
// that has questions at the same difficulty.
func (e *Engine) NextTopicQuiz(ctx context.Context, userID string, result quiz.Result) (*quiz.Session, error) {
	next, err := e.tracker.AvailableNextTopics(ctx, userID, result.Topic)
	if err != nil {
		return nil, err
	}
	for _, topic := range next {
		if e.repo.Count(topic, result.Difficulty) > 0 {
			return e.StartQuiz(ctx, userID, topic, result.Difficulty)
		}
	}
	return nil, fmt.Errorf("%w: nothing unlocked after %s", ErrNoQuestionsAvailable, result.Topic)
}

// Stats summarizes the user's results, optionally for a single topic.
func (e *Engine) Stats(ctx context.Context, userID string, topic curriculum.Topic) (Stats, error) {
	results, err := e.GetResults(ctx, userID, ResultFilter{Topic: topic})
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	sum := 0
	for _, r := range results {
		st.Attempts++
		if r.Passed {
			st.Passed++
		}
		p := r.Percentage()
		sum += p
		st.BestPercentage = max(st.BestPercentage, p)
		st.TotalQuestions += r.TotalQuestions
		st.TotalCorrect += r.Score
	}
	if st.Attempts > 0 {
		st.AveragePercentage = sum / st.Attempts
	}
	return st, nil
}

// UnlockedTopics returns the topics the user may take, in graph order.
func (e *Engine) UnlockedTopics(ctx context.Context, userID string) ([]curriculum.Topic, error) {
	return e.tracker.UnlockedTopics(ctx, userID)
}

// CompletedTopics returns the user's completed topics, sorted.
func (e *Engine) CompletedTopics(ctx context.Context, userID string) ([]curriculum.Topic, error) {
	completed, err := e.tracker.CompletedTopics(ctx, userID)
	if err != nil {
		return nil, err
	}
	topics := make([]curriculum.Topic, 0, len(completed))
	for t := range completed {
		topics = append(topics, t)
	}
	slices.Sort(topics)
	return topics, nil
}

func (e *Engine) logEvent(ev Event) {
	if err := e.events.LogEvent(ev); err != nil {
		slog.Warn("event log failed", "type", ev.EventType, "user_id", ev.UserID, "error", err)
	}
}

func topicNames(topics []curriculum.Topic) []string {
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = string(t)
	}
	return names
}
