package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

var (
	ErrInvalidPort    = errors.New("config: port out of range")
	ErrInvalidWorkers = errors.New("config: workers must be positive")
	ErrInvalidSnippet = errors.New("config: snippet max length must be positive")
)

// Config holds the server configuration. Values come from defaults, then
// an optional TOML file, then GOSNIPPET_* environment overrides, in that
// order.
type Config struct {
	Port       int    `toml:"port"`
	LogLevel   string `toml:"log_level"`
	Workers    int    `toml:"workers"`
	QueueDepth int    `toml:"queue_depth"`

	// SnippetMaxLength bounds excerpt fragments in bytes.
	SnippetMaxLength int `toml:"snippet_max_length"`

	// QueryTimeoutMs bounds per-query execution time.
	QueryTimeoutMs int `toml:"query_timeout_ms"`

	// MaxHits caps the number of hits a single search may return.
	MaxHits int `toml:"max_hits"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:             8080,
		LogLevel:         "info",
		Workers:          4,
		QueueDepth:       64,
		SnippetMaxLength: 150,
		QueryTimeoutMs:   5000,
		MaxHits:          100,
	}
}

// Load reads the configuration. An empty path skips the file and uses
// defaults plus environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers)
	}
	if c.SnippetMaxLength < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidSnippet, c.SnippetMaxLength)
	}
	return nil
}

// QueryTimeout returns the query timeout as a duration.
func (c Config) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutMs) * time.Millisecond
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GOSNIPPET_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("GOSNIPPET_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GOSNIPPET_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("GOSNIPPET_QUEUE_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueDepth = n
		}
	}
	if v := os.Getenv("GOSNIPPET_SNIPPET_MAX_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SnippetMaxLength = n
		}
	}
	if v := os.Getenv("GOSNIPPET_QUERY_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueryTimeoutMs = n
		}
	}
	if v := os.Getenv("GOSNIPPET_MAX_HITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxHits = n
		}
	}
}
