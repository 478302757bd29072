package config

import "time"

// Config is the root worklog configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
	Templates  TemplatesConfig  `yaml:"templates"`
	Generation GenerationConfig `yaml:"generation"`
}

// StorageConfig locates the SQLite database holding the workspace.
type StorageConfig struct {
	Path        string        `yaml:"path"         env:"WORKLOG_STORAGE_PATH"         env-default:"worklog.db"`
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"WORKLOG_STORAGE_BUSY_TIMEOUT" env-default:"5s"`
	JournalMode string        `yaml:"journal_mode" env:"WORKLOG_STORAGE_JOURNAL_MODE" env-default:"WAL"`
	MaxRetries  int           `yaml:"max_retries"  env:"WORKLOG_STORAGE_MAX_RETRIES"  env-default:"3"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"WORKLOG_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"WORKLOG_LOG_FORMAT" env-default:"text"`
}

// ServerConfig holds the local capture API settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"WORKLOG_SERVER_ADDR"             env-default:"127.0.0.1:7878"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"WORKLOG_SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"WORKLOG_SERVER_WRITE_TIMEOUT"    env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"WORKLOG_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"WORKLOG_SERVER_MAX_BODY_BYTES"   env-default:"1048576"`
}

// TemplatesConfig controls template import.
type TemplatesConfig struct {
	WatchDir       string        `yaml:"watch_dir"        env:"WORKLOG_TEMPLATES_WATCH_DIR"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"    env:"WORKLOG_TEMPLATES_FETCH_TIMEOUT"    env-default:"10s"`
	MaxImportBytes int64         `yaml:"max_import_bytes" env:"WORKLOG_TEMPLATES_MAX_IMPORT_BYTES" env-default:"262144"`
}

// GenerationConfig tunes the generator cache.
type GenerationConfig struct {
	CacheSize int `yaml:"cache_size" env:"WORKLOG_GENERATION_CACHE_SIZE" env-default:"64"`
}
