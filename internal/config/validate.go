package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks values the struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, errors.New("storage.path must not be empty"))
	}
	if c.Storage.BusyTimeout < 0 {
		errs = append(errs, fmt.Errorf("storage.busy_timeout must be >= 0 (got %s)", c.Storage.BusyTimeout))
	}
	if c.Storage.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("storage.max_retries must be >= 0 (got %d)", c.Storage.MaxRetries))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format))
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be > 0 (got %d)", c.Server.MaxBodyBytes))
	}

	if c.Templates.MaxImportBytes <= 0 {
		errs = append(errs, fmt.Errorf("templates.max_import_bytes must be > 0 (got %d)", c.Templates.MaxImportBytes))
	}
	if c.Templates.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("templates.fetch_timeout must be > 0 (got %s)", c.Templates.FetchTimeout))
	}

	if c.Generation.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("generation.cache_size must be > 0 (got %d)", c.Generation.CacheSize))
	}

	return errors.Join(errs...)
}
