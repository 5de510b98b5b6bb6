package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/engine"
	"github.com/p-n-ai/pai-quiz/internal/httpapi"
	"github.com/p-n-ai/pai-quiz/internal/platform/backend"
	"github.com/p-n-ai/pai-quiz/internal/platform/config"
	"github.com/p-n-ai/pai-quiz/internal/progress"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(os.Stdout, cfg.Log))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	repo, err := loadCurriculum(cfg)
	if err != nil {
		return err
	}

	b, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	policy, err := passPolicy(cfg.Quiz)
	if err != nil {
		return err
	}

	eng := engine.NewEngine(engine.EngineConfig{
		Repository: repo,
		Tracker: progress.NewTracker(progress.TrackerConfig{
			Graph: repo.Graph(),
			Store: b.Store,
		}),
		Policy:           policy,
		Events:           b.Events,
		EndOnWrongAnswer: cfg.Quiz.EndOnWrongAnswer,
		AllowEarlyFinish: cfg.Quiz.AllowEarlyFinish,
		RequireUnlocked:  cfg.Quiz.RequireUnlocked,
	})

	checks := make(map[string]httpapi.Check, len(b.Checks))
	for name, check := range b.Checks {
		checks[name] = check
	}
	api := httpapi.NewServer(httpapi.ServerConfig{Engine: eng, Checks: checks})
	go api.RunJanitor(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"addr", srv.Addr,
			"store", cfg.Store.Backend,
			"pass_policy", policy.String(),
			"questions", repo.Len(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}

// newLogger builds the process logger from the log settings.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadCurriculum loads the topic graph and question catalog. A missing or
// unreadable catalog leaves the service running with no questions.
func loadCurriculum(cfg *config.Config) (*curriculum.Repository, error) {
	graph := curriculum.DefaultGraph()
	if cfg.GraphPath != "" {
		g, err := curriculum.LoadGraph(cfg.GraphPath)
		if err != nil {
			return nil, fmt.Errorf("load topic graph: %w", err)
		}
		graph = g
	}

	repo, err := curriculum.NewRepositoryFromFile(cfg.CatalogPath, graph)
	if err != nil {
		slog.Warn("question catalog unavailable, starting empty", "path", cfg.CatalogPath, "error", err)
	}
	return repo, nil
}

func passPolicy(cfg config.QuizConfig) (quiz.PassPolicy, error) {
	mode, err := quiz.ParsePassMode(cfg.PassMode)
	if err != nil {
		return quiz.PassPolicy{}, err
	}
	return quiz.PassPolicy{Mode: mode, Ratio: cfg.PassRatio}, nil
}
