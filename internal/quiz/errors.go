package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuestionSet is returned when a session is created without questions.
	ErrEmptyQuestionSet = errors.New("quiz: empty question set")

	// ErrSessionCompleted is returned by mutations on a finished session.
	ErrSessionCompleted = errors.New("quiz: session already completed")

	// ErrSessionActive is returned when a result is requested for a session
	// that is still accepting answers.
	ErrSessionActive = errors.New("quiz: session still active")

	// ErrSessionFinished is returned when a session's result was already taken.
	ErrSessionFinished = errors.New("quiz: session already finished")
)

// InvalidAnswerIndexError reports an answer index outside the current
// question's options.
type InvalidAnswerIndexError struct {
	Index   int
	Options int
}

func (e *InvalidAnswerIndexError) Error() string {
	return fmt.Sprintf("quiz: answer index %d out of range [0, %d)", e.Index, e.Options)
}
