// Package httpapi exposes the quiz engine over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/engine"
)

const maxBodyBytes = 1 << 20

// Check reports whether a dependency is ready to serve traffic.
type Check func(ctx context.Context) error

// ServerConfig holds dependencies for the HTTP API.
type ServerConfig struct {
	Engine       *engine.Engine
	Checks       map[string]Check // run by /readyz
	CheckTimeout time.Duration    // default 2s
	SessionTTL   time.Duration    // idle sessions are dropped after this (default 2h)
}

// Server routes HTTP requests to the engine. Active sessions live in memory.
type Server struct {
	engine       *engine.Engine
	sessions     *registry
	checks       map[string]Check
	checkTimeout time.Duration
	sessionTTL   time.Duration
}

// NewServer creates the HTTP API.
func NewServer(cfg ServerConfig) *Server {
	eng := cfg.Engine
	if eng == nil {
		eng = engine.NewEngine(engine.EngineConfig{})
	}
	timeout := cfg.CheckTimeout
	if timeout == 0 {
		timeout = 2 * time.Second
	}
	ttl := cfg.SessionTTL
	if ttl == 0 {
		ttl = 2 * time.Hour
	}
	return &Server{
		engine:       eng,
		sessions:     newRegistry(),
		checks:       cfg.Checks,
		checkTimeout: timeout,
		sessionTTL:   ttl,
	}
}

// RunJanitor drops idle sessions until ctx is cancelled.
func (s *Server) RunJanitor(ctx context.Context) {
	ticker := time.NewTicker(s.sessionTTL / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.sweep(s.sessionTTL); n > 0 {
				slog.Info("idle sessions dropped", "count", n, "active", s.sessions.len())
			}
		}
	}
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /v1/topics", s.handleTopics)

	mux.HandleFunc("POST /v1/sessions", s.handleStartSession)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /v1/sessions/{id}/answers", s.handleSubmitAnswer)
	mux.HandleFunc("POST /v1/sessions/{id}/advance", s.handleAdvance)
	mux.HandleFunc("POST /v1/sessions/{id}/finish", s.handleFinish)

	mux.HandleFunc("GET /v1/users/{id}/progress", s.handleProgress)
	mux.HandleFunc("GET /v1/users/{id}/results", s.handleResults)
	mux.HandleFunc("GET /v1/users/{id}/results.xlsx", s.handleResultsXLSX)
	mux.HandleFunc("GET /v1/users/{id}/stats", s.handleStats)
	mux.HandleFunc("GET /v1/users/{id}/unlocks", s.handleUnlocks)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	failed := map[string]string{}
	for name, check := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), s.checkTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "failed": failed})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
