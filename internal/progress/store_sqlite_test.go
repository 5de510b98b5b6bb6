package progress_test

import (
	"path/filepath"
	"testing"

	"github.com/p-n-ai/pai-quiz/internal/platform/sqlite"
	"github.com/p-n-ai/pai-quiz/internal/progress"
)

func TestSQLiteStore(t *testing.T) {
	db, err := sqlite.Open(t.Context(), filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("sqlite.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := progress.NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	runStoreTests(t, store)
}

func TestNewSQLiteStore_NilDB(t *testing.T) {
	if _, err := progress.NewSQLiteStore(nil); err == nil {
		t.Error("NewSQLiteStore(nil) should return error")
	}
}
