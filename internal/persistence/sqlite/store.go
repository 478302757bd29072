package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/example/worklog/internal/persistence"
)

const kvTable = "kv"

// Store implements persistence.Store on a single SQLite table.
type Store struct {
	pool  *ConnectionPool
	retry *RetryHelper
	now   func() time.Time
}

var _ persistence.Store = (*Store)(nil)

// Open connects to the database described by cfg and applies migrations.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	pool, err := NewConnectionPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return NewStore(pool, cfg.Retry, time.Now), nil
}

// NewStore wraps an already migrated pool.
func NewStore(pool *ConnectionPool, retry RetryConfig, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{pool: pool, retry: NewRetryHelper(retry), now: now}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.pool.Close()
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if strings.TrimSpace(key) == "" {
		return nil, persistence.ErrEmptyKey
	}

	query, args, err := sq.Select("value").From(kvTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var value []byte
	err = s.retry.WithRetry(ctx, func() error {
		return s.pool.db.QueryRowContext(ctx, query, args...).Scan(&value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get %s: %w", key, err)
	}
	return value, nil
}

// Put inserts or replaces the value stored under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return persistence.ErrEmptyKey
	}
	if value == nil {
		value = []byte("null")
	}

	query, args, err := sq.Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, value, s.now().UTC().Format(time.RFC3339Nano)).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build put query: %w", err)
	}

	err = s.retry.WithRetry(ctx, func() error {
		_, execErr := s.pool.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("sqlite: put %s: %w", key, err)
	}
	return nil
}

// Delete removes key, returning persistence.ErrNotFound when absent.
func (s *Store) Delete(ctx context.Context, key string) error {
	query, args, err := sq.Delete(kvTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	var affected int64
	err = s.retry.WithRetry(ctx, func() error {
		result, execErr := s.pool.db.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected, execErr = result.RowsAffected()
		return execErr
	})
	if err != nil {
		return fmt.Errorf("sqlite: delete %s: %w", key, err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// Keys lists stored keys in lexical order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("key").From(kvTable).OrderBy("key ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build keys query: %w", err)
	}

	var keys []string
	err = s.retry.WithRetry(ctx, func() error {
		rows, queryErr := s.pool.db.QueryContext(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		keys = keys[:0]
		for rows.Next() {
			var key string
			if scanErr := rows.Scan(&key); scanErr != nil {
				return scanErr
			}
			keys = append(keys, key)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: list keys: %w", err)
	}
	return keys, nil
}

// UpdatedAt reports when key was last written.
func (s *Store) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	query, args, err := sq.Select("updated_at").From(kvTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("build updated_at query: %w", err)
	}

	var raw string
	err = s.pool.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, persistence.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: updated_at %s: %w", key, err)
	}
	return time.Parse(time.RFC3339Nano, raw)
}
