package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/worklog/internal/config"
	"github.com/example/worklog/internal/persistence"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := DefaultConfig(filepath.Join(t.TempDir(), "worklog.db"))
	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Get(ctx, persistence.KeyPresets)
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	require.NoError(t, store.Put(ctx, persistence.KeyPresets, []byte(`[{"id":"p1"}]`)))
	require.NoError(t, store.Put(ctx, persistence.KeyProfile, []byte(`{"type":"developer"}`)))

	got, err := store.Get(ctx, persistence.KeyPresets)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p1"}]`, string(got))

	require.NoError(t, store.Put(ctx, persistence.KeyPresets, []byte(`[]`)))
	got, err = store.Get(ctx, persistence.KeyPresets)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{persistence.KeyPresets, persistence.KeyProfile}, keys)

	require.NoError(t, store.Delete(ctx, persistence.KeyProfile))
	assert.ErrorIs(t, store.Delete(ctx, persistence.KeyProfile), persistence.ErrNotFound)
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "worklog.db")

	first, err := Open(ctx, DefaultConfig(path))
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, persistence.KeyArticles, []byte(`["a"]`)))
	require.NoError(t, first.Close())

	second, err := Open(ctx, DefaultConfig(path))
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, err := second.Get(ctx, persistence.KeyArticles)
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(got))
}

func TestStoreRecordsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	pool, err := NewConnectionPool(ctx, InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	version, err := pool.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	fixed := time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC)
	store := NewStore(pool, DefaultRetryConfig(), func() time.Time { return fixed })
	require.NoError(t, store.Put(ctx, "k", []byte(`1`)))

	updated, err := store.UpdatedAt(ctx, "k")
	require.NoError(t, err)
	assert.True(t, updated.Equal(fixed))
}

func TestStoreRejectsBlankKeys(t *testing.T) {
	store := newTestStore(t)
	assert.ErrorIs(t, store.Put(context.Background(), "  ", []byte(`1`)), persistence.ErrEmptyKey)
	_, err := store.Get(context.Background(), "")
	assert.ErrorIs(t, err, persistence.ErrEmptyKey)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty dsn", mutate: func(c *Config) { c.DSN = "" }, wantErr: true},
		{name: "negative busy timeout", mutate: func(c *Config) { c.BusyTimeout = -time.Second }, wantErr: true},
		{name: "bad journal mode", mutate: func(c *Config) { c.JournalMode = "FAST" }, wantErr: true},
		{name: "lowercase journal mode", mutate: func(c *Config) { c.JournalMode = "wal" }},
		{name: "bad synchronous", mutate: func(c *Config) { c.Synchronous = "SOMETIMES" }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.Retry.MaxRetries = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("worklog.db")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFromStorage(t *testing.T) {
	cfg := FromStorage(config.StorageConfig{
		Path:        "data/worklog.db",
		BusyTimeout: 2 * time.Second,
		JournalMode: "delete",
		MaxRetries:  5,
	})
	assert.Equal(t, "data/worklog.db", cfg.DSN)
	assert.Equal(t, 2*time.Second, cfg.BusyTimeout)
	assert.Equal(t, "DELETE", cfg.JournalMode)
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
	assert.NoError(t, cfg.Validate())

	fallback := FromStorage(config.StorageConfig{Path: "x.db"})
	assert.Equal(t, DefaultConfig("x.db").BusyTimeout, fallback.BusyTimeout)
	assert.Equal(t, "WAL", fallback.JournalMode)
}

func TestRetryHelper(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2}

	t.Run("retries busy errors until success", func(t *testing.T) {
		attempts := 0
		err := NewRetryHelper(cfg).WithRetry(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return errors.New("database is locked")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		attempts := 0
		err := NewRetryHelper(cfg).WithRetry(context.Background(), func() error {
			attempts++
			return errors.New("SQLITE_BUSY")
		})
		assert.ErrorIs(t, err, ErrBusy)
		assert.Equal(t, 3, attempts)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		attempts := 0
		err := NewRetryHelper(cfg).WithRetry(context.Background(), func() error {
			attempts++
			return persistence.ErrNotFound
		})
		assert.ErrorIs(t, err, persistence.ErrNotFound)
		assert.Equal(t, 1, attempts)
	})

	t.Run("maps constraint failures", func(t *testing.T) {
		err := NewErrorMapper().MapError(errors.New("CHECK constraint failed: kv"))
		assert.ErrorIs(t, err, ErrConstraint)
	})
}
