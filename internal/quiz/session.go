// Package quiz implements the quiz session state machine and its results.
package quiz

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateActive State = iota
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Unanswered marks a question that was advanced past without an answer.
const Unanswered = -1

// Session is one attempt over a fixed, pre-shuffled question list. A Session
// is owned by a single caller and is not safe for concurrent use.
type Session struct {
	ID         string
	UserID     string
	Topic      curriculum.Topic
	Difficulty curriculum.Difficulty
	StartedAt  time.Time

	questions    []curriculum.Question
	current      int
	answers      []int
	correct      []bool
	score        int
	state        State
	answerChosen bool
	finished     bool
}

// NewSession starts an attempt over questions in the given order.
func NewSession(userID string, topic curriculum.Topic, difficulty curriculum.Difficulty, questions []curriculum.Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}
	return &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Topic:      topic,
		Difficulty: difficulty,
		StartedAt:  time.Now(),
		questions:  slices.Clone(questions),
		answers:    make([]int, 0, len(questions)),
		correct:    make([]bool, 0, len(questions)),
		state:      StateActive,
	}, nil
}

// SubmitAnswer records answer for the current question, replacing any earlier
// answer to the same question. The index does not advance.
func (s *Session) SubmitAnswer(answer int) error {
	if s.state != StateActive {
		return ErrSessionCompleted
	}
	q := s.questions[s.current]
	if answer < 0 || answer >= len(q.Options) {
		return &InvalidAnswerIndexError{Index: answer, Options: len(q.Options)}
	}

	ok := q.IsCorrect(answer)
	if len(s.answers) == s.current+1 {
		if s.correct[s.current] {
			s.score--
		}
		s.answers[s.current] = answer
		s.correct[s.current] = ok
	} else {
		s.answers = append(s.answers, answer)
		s.correct = append(s.correct, ok)
	}
	if ok {
		s.score++
	}
	s.answerChosen = true
	return nil
}

// Advance moves to the next question, or completes the session when the
// current question is the last one.
func (s *Session) Advance() error {
	if s.state != StateActive {
		return ErrSessionCompleted
	}
	if len(s.answers) < s.current+1 {
		s.answers = append(s.answers, Unanswered)
		s.correct = append(s.correct, false)
	}
	if s.IsLastQuestion() {
		s.state = StateCompleted
		return nil
	}
	s.current++
	s.answerChosen = false
	return nil
}

// Terminate completes the session immediately. Questions not yet reached
// count as wrong.
func (s *Session) Terminate() {
	s.state = StateCompleted
}

// MarkFinished records that the session's result has been produced. It
// returns ErrSessionActive before completion and ErrSessionFinished on any
// later call.
func (s *Session) MarkFinished() error {
	if s.state != StateCompleted {
		return ErrSessionActive
	}
	if s.finished {
		return ErrSessionFinished
	}
	s.finished = true
	return nil
}

// IsFinished reports whether MarkFinished has succeeded.
func (s *Session) IsFinished() bool { return s.finished }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// IsCompleted reports whether the session no longer accepts answers.
func (s *Session) IsCompleted() bool { return s.state == StateCompleted }

// Score returns the number of correct answers so far.
func (s *Session) Score() int { return s.score }

// Len returns the number of questions in the session.
func (s *Session) Len() int { return len(s.questions) }

// Elapsed returns the time since the session started, measured at now.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if d := now.Sub(s.StartedAt); d > 0 {
		return d
	}
	return 0
}

// CurrentIndex returns the 0-based index of the current question.
func (s *Session) CurrentIndex() int { return s.current }

// CurrentQuestion returns the question being answered.
func (s *Session) CurrentQuestion() curriculum.Question { return s.questions[s.current] }

// IsLastQuestion reports whether the current question is the final one.
func (s *Session) IsLastQuestion() bool { return s.current == len(s.questions)-1 }

// AnswerChosen reports whether the current question has an answer that has
// not yet been advanced past.
func (s *Session) AnswerChosen() bool { return s.answerChosen }

// Questions returns the session's question order.
func (s *Session) Questions() []curriculum.Question { return slices.Clone(s.questions) }

// Answers returns the recorded answers, one per question reached.
func (s *Session) Answers() []int { return slices.Clone(s.answers) }

// LastAnswerCorrect reports whether the current question's recorded answer is
// correct. It is false when no answer has been recorded.
func (s *Session) LastAnswerCorrect() bool {
	if len(s.correct) < s.current+1 {
		return false
	}
	return s.correct[s.current]
}
