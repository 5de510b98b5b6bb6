package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/pai-quiz/internal/engine"
	"github.com/p-n-ai/pai-quiz/internal/progress"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

var (
	errSessionNotFound = errors.New("session not found")
	errBadRequest      = errors.New("bad request")
)

type errorBody struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	var idxErr *quiz.InvalidAnswerIndexError
	var persistErr *progress.PersistenceError
	switch {
	case errors.As(err, &idxErr), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, quiz.ErrSessionCompleted), errors.Is(err, quiz.ErrSessionActive),
		errors.Is(err, quiz.ErrSessionFinished):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNoQuestionsAvailable), errors.Is(err, engine.ErrTopicLocked):
		return http.StatusUnprocessableEntity
	case errors.As(err, &persistErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
