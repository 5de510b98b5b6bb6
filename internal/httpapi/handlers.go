package httpapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/engine"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
	"github.com/p-n-ai/pai-quiz/internal/report"
)

type topicView struct {
	ID            curriculum.Topic              `json:"id"`
	Name          string                        `json:"name"`
	Prerequisites []curriculum.Topic            `json:"prerequisites"`
	Unlocks       []curriculum.Topic            `json:"unlocks"`
	Questions     map[curriculum.Difficulty]int `json:"questions"`
}

type questionView struct {
	ID        string   `json:"id"`
	Prompt    string   `json:"prompt"`
	Options   []string `json:"options"`
	ImageName string   `json:"imageName,omitempty"`
}

type sessionView struct {
	ID           string                `json:"id"`
	UserID       string                `json:"userId"`
	Topic        curriculum.Topic      `json:"topic"`
	Difficulty   curriculum.Difficulty `json:"difficulty,omitempty"`
	State        string                `json:"state"`
	CurrentIndex int                   `json:"currentIndex"`
	Total        int                   `json:"total"`
	Score        int                   `json:"score"`
	AnswerChosen bool                  `json:"answerChosen"`
	Answers      []int                 `json:"answers"`
	Question     *questionView         `json:"question,omitempty"`
}

type answerView struct {
	Correct bool        `json:"correct"`
	Session sessionView `json:"session"`
}

type resultView struct {
	quiz.Result
	Percentage int `json:"percentage"`
}

type outcomeView struct {
	Result     resultView         `json:"result"`
	NextTopics []curriculum.Topic `json:"nextTopics"`
	Error      string             `json:"error,omitempty"`
}

type progressView struct {
	UserID    string             `json:"userId"`
	Completed []curriculum.Topic `json:"completed"`
	Unlocked  []curriculum.Topic `json:"unlocked"`
}

func newSessionView(s *quiz.Session) sessionView {
	v := sessionView{
		ID:           s.ID,
		UserID:       s.UserID,
		Topic:        s.Topic,
		Difficulty:   s.Difficulty,
		State:        s.State().String(),
		CurrentIndex: s.CurrentIndex(),
		Total:        s.Len(),
		Score:        s.Score(),
		AnswerChosen: s.AnswerChosen(),
		Answers:      s.Answers(),
	}
	if !s.IsCompleted() {
		q := s.CurrentQuestion()
		v.Question = &questionView{ID: q.ID, Prompt: q.Prompt, Options: q.Options, ImageName: q.ImageName}
	}
	return v
}

func newResultView(r quiz.Result) resultView {
	return resultView{Result: r, Percentage: r.Percentage()}
}

func (s *Server) graph() *curriculum.Graph {
	return s.engine.Repository().Graph()
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	g := s.graph()
	repo := s.engine.Repository()

	topics := make([]topicView, 0, len(g.Topics()))
	for _, t := range g.Topics() {
		counts := make(map[curriculum.Difficulty]int)
		for _, d := range curriculum.AllDifficulties() {
			counts[d] = repo.Count(t, d)
		}
		topics = append(topics, topicView{
			ID:            t,
			Name:          g.Name(t),
			Prerequisites: nonNil(g.Prerequisites(t)),
			Unlocks:       nonNil(g.Unlocks(t)),
			Questions:     counts,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

type startRequest struct {
	UserID     string `json:"userId"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if req.UserID == "" {
		writeError(w, r, fmt.Errorf("%w: userId is required", errBadRequest))
		return
	}
	topic, err := s.graph().ParseTopic(req.Topic)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	var difficulty curriculum.Difficulty
	if req.Difficulty != "" {
		if difficulty, err = curriculum.ParseDifficulty(req.Difficulty); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}

	session, err := s.engine.StartQuiz(r.Context(), req.UserID, topic, difficulty)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.sessions.add(session)
	writeJSON(w, http.StatusCreated, newSessionView(session))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	var view sessionView
	err := s.sessions.with(r.PathValue("id"), func(session *quiz.Session) error {
		view = newSessionView(session)
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type answerRequest struct {
	AnswerIndex *int `json:"answerIndex"`
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if req.AnswerIndex == nil {
		writeError(w, r, fmt.Errorf("%w: answerIndex is required", errBadRequest))
		return
	}

	var resp answerView
	err := s.sessions.with(r.PathValue("id"), func(session *quiz.Session) error {
		if err := s.engine.SubmitAnswer(session, *req.AnswerIndex); err != nil {
			return err
		}
		resp = answerView{Correct: session.LastAnswerCorrect(), Session: newSessionView(session)}
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var view sessionView
	err := s.sessions.with(r.PathValue("id"), func(session *quiz.Session) error {
		if err := s.engine.Advance(session); err != nil {
			return err
		}
		view = newSessionView(session)
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var (
		outcome   *engine.Outcome
		finishErr error
	)
	err := s.sessions.with(id, func(session *quiz.Session) error {
		outcome, finishErr = s.engine.FinishQuiz(r.Context(), session, session.UserID)
		if outcome == nil {
			return finishErr
		}
		s.sessions.remove(id)
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	view := outcomeView{Result: newResultView(outcome.Result), NextTopics: nonNil(outcome.NextTopics)}
	if finishErr != nil {
		// The outcome is still valid; the client learns that it was not saved.
		view.Error = finishErr.Error()
		writeJSON(w, statusFor(finishErr), view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	completed, err := s.engine.CompletedTopics(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	unlocked, err := s.engine.UnlockedTopics(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progressView{
		UserID:    userID,
		Completed: nonNil(completed),
		Unlocked:  nonNil(unlocked),
	})
}

func (s *Server) resultFilter(r *http.Request) (engine.ResultFilter, error) {
	var filter engine.ResultFilter
	if v := r.URL.Query().Get("topic"); v != "" {
		topic, err := s.graph().ParseTopic(v)
		if err != nil {
			return filter, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		filter.Topic = topic
	}
	if v := r.URL.Query().Get("difficulty"); v != "" {
		d, err := curriculum.ParseDifficulty(v)
		if err != nil {
			return filter, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		filter.Difficulty = d
	}
	return filter, nil
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	filter, err := s.resultFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	results, err := s.engine.GetResults(r.Context(), r.PathValue("id"), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]resultView, len(results))
	for i, res := range results {
		views[i] = newResultView(res)
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": views})
}

func (s *Server) handleResultsXLSX(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	filter, err := s.resultFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	results, err := s.engine.GetResults(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteResults(&buf, results, s.graph()); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="results-%s.xlsx"`, userID))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	filter, err := s.resultFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := s.engine.Stats(r.Context(), r.PathValue("id"), filter.Topic)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
