// Package backend opens the progress store selected by configuration together
// with the matching analytics event logger and readiness checks.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-quiz/internal/engine"
	"github.com/p-n-ai/pai-quiz/internal/platform/cache"
	"github.com/p-n-ai/pai-quiz/internal/platform/config"
	"github.com/p-n-ai/pai-quiz/internal/platform/database"
	"github.com/p-n-ai/pai-quiz/internal/platform/sqlite"
	"github.com/p-n-ai/pai-quiz/internal/progress"
)

// Backend bundles an opened progress store and what depends on it.
type Backend struct {
	Store  progress.Store
	Events engine.EventLogger
	Checks map[string]func(ctx context.Context) error

	closers []func()
}

// Close releases every connection the backend opened.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// Open connects to the backend named by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{
		Events: engine.NopEventLogger{},
		Checks: map[string]func(ctx context.Context) error{},
	}

	switch cfg.Store.Backend {
	case config.StoreMemory, "":
		b.Store = progress.NewMemoryStore()

	case config.StorePostgres:
		db, err := database.Open(ctx, database.Options{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		b.closers = append(b.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		store, err := progress.NewPostgresStore(db.Pool)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Store = store
		b.Events = engine.NewPostgresEventLogger(db.Pool)
		b.Checks["database"] = db.Ready

	case config.StoreRedis:
		c, err := cache.Open(ctx, cache.Options{URL: cfg.Cache.URL, Prefix: cfg.Cache.Prefix})
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		b.closers = append(b.closers, func() { c.Close() })
		store, err := progress.NewRedisStore(c)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Store = store
		b.Checks["cache"] = c.Ready

	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		b.closers = append(b.closers, func() { db.Close() })
		store, err := progress.NewSQLiteStore(db)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Store = store
		b.Checks["sqlite"] = pingCheck(db)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	slog.Info("progress store ready", "backend", cfg.Store.Backend)
	return b, nil
}

func pingCheck(db *sql.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
