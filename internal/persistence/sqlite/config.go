package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/worklog/internal/config"
)

// Config holds SQLite-specific database configuration.
type Config struct {
	// DSN is the database file path or ":memory:".
	DSN string

	// BusyTimeout sets how long SQLite waits for database locks.
	BusyTimeout time.Duration

	// JournalMode sets the SQLite journal mode (WAL, DELETE, TRUNCATE, ...).
	JournalMode string

	// Synchronous sets the synchronous mode (FULL, NORMAL, OFF).
	Synchronous string

	// MaxOpenConns caps the number of open connections.
	MaxOpenConns int

	// Retry configures how busy or locked errors are retried.
	Retry RetryConfig
}

// DefaultConfig returns a configuration with sensible defaults for a local,
// single-user database file.
func DefaultConfig(path string) Config {
	return Config{
		DSN:          path,
		BusyTimeout:  5 * time.Second,
		JournalMode:  "WAL",
		Synchronous:  "NORMAL",
		MaxOpenConns: 1,
		Retry:        DefaultRetryConfig(),
	}
}

// FromStorage builds a configuration from the application storage settings.
func FromStorage(storage config.StorageConfig) Config {
	cfg := DefaultConfig(storage.Path)
	if storage.BusyTimeout > 0 {
		cfg.BusyTimeout = storage.BusyTimeout
	}
	if storage.JournalMode != "" {
		cfg.JournalMode = strings.ToUpper(storage.JournalMode)
	}
	cfg.Retry.MaxRetries = storage.MaxRetries
	return cfg
}

// InMemoryConfig returns a configuration for a throwaway in-memory database.
func InMemoryConfig() Config {
	cfg := DefaultConfig(":memory:")
	cfg.JournalMode = "MEMORY"
	cfg.Synchronous = "OFF"
	return cfg
}

var (
	validJournalModes = map[string]bool{
		"DELETE":   true,
		"TRUNCATE": true,
		"PERSIST":  true,
		"MEMORY":   true,
		"WAL":      true,
		"OFF":      true,
	}
	validSyncModes = map[string]bool{
		"OFF":    true,
		"NORMAL": true,
		"FULL":   true,
		"EXTRA":  true,
	}
)

// Validate reports configuration values SQLite would reject.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DSN) == "" {
		return fmt.Errorf("DSN cannot be empty")
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("BusyTimeout cannot be negative")
	}
	if c.JournalMode != "" && !validJournalModes[strings.ToUpper(c.JournalMode)] {
		return fmt.Errorf("invalid journal mode: %s", c.JournalMode)
	}
	if c.Synchronous != "" && !validSyncModes[strings.ToUpper(c.Synchronous)] {
		return fmt.Errorf("invalid synchronous mode: %s", c.Synchronous)
	}
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("MaxOpenConns cannot be negative")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("MaxRetries cannot be negative")
	}
	return nil
}

func (c Config) pragmas() []string {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", c.BusyTimeout.Milliseconds()),
	}
	if c.JournalMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA journal_mode = %s", strings.ToUpper(c.JournalMode)))
	}
	if c.Synchronous != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA synchronous = %s", strings.ToUpper(c.Synchronous)))
	}
	return pragmas
}
