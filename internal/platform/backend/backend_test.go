package backend_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/p-n-ai/pai-quiz/internal/platform/backend"
	"github.com/p-n-ai/pai-quiz/internal/platform/config"
	"github.com/p-n-ai/pai-quiz/internal/progress"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.Config
		wantChecks int
	}{
		{"memory", config.Config{Store: config.StoreConfig{Backend: config.StoreMemory}}, 0},
		{"sqlite", config.Config{Store: config.StoreConfig{Backend: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "quiz.db")}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			b, err := backend.Open(ctx, &tt.cfg)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer b.Close()

			if err := b.Store.SaveCompleted(ctx, "u1", nil); err != nil {
				t.Errorf("SaveCompleted() error = %v", err)
			}
			if len(b.Checks) != tt.wantChecks {
				t.Errorf("checks = %d, want %d", len(b.Checks), tt.wantChecks)
			}
			for name, check := range b.Checks {
				if err := check(ctx); err != nil {
					t.Errorf("check %s error = %v", name, err)
				}
			}
		})
	}
}

func TestOpen_MemoryStoreType(t *testing.T) {
	b, err := backend.Open(context.Background(), &config.Config{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()
	if _, ok := b.Store.(*progress.MemoryStore); !ok {
		t.Errorf("Store = %T, want *progress.MemoryStore", b.Store)
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"unknown backend", config.Config{Store: config.StoreConfig{Backend: "mongo"}}},
		{"bad postgres url", config.Config{Store: config.StoreConfig{Backend: config.StorePostgres}, Database: config.DatabaseConfig{URL: "://bad"}}},
		{"bad redis url", config.Config{Store: config.StoreConfig{Backend: config.StoreRedis}, Cache: config.CacheConfig{URL: "http://nope"}}},
		{"empty sqlite path", config.Config{Store: config.StoreConfig{Backend: config.StoreSQLite}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := backend.Open(context.Background(), &tt.cfg); err == nil {
				t.Error("Open() should return error")
			}
		})
	}
}
