package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/worklog/internal/persistence/sqlite"
)

// SQLiteHarness is a migrated SQLite key-value store in a temporary directory.
type SQLiteHarness struct {
	Store *sqlite.Store
	Path  string

	cleanup func()
}

// Close releases the database. It is also registered with tb.Cleanup.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens a fresh database file under tb.TempDir.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "worklog.db")
	store, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	harness := &SQLiteHarness{
		Store: store,
		Path:  path,
		cleanup: func() {
			_ = store.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}

// Reopen closes the current database and opens the same file again.
func (h *SQLiteHarness) Reopen(tb testing.TB) {
	tb.Helper()
	h.Close()

	store, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(h.Path))
	if err != nil {
		tb.Fatalf("failed to reopen storage: %v", err)
	}
	h.Store = store
	h.cleanup = func() {
		_ = store.Close()
	}
}
