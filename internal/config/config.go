// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	Port               string
	LogLevel           slog.Level
	CORSAllowedOrigins []string
	MetricsEnabled     bool
	ShutdownTimeout    time.Duration
	DB                 DBConfig
	Problems           ProblemListConfig
}

// DBConfig selects and configures the document store.
type DBConfig struct {
	Backend        string
	Path           string // sqlite file path
	URL            string // mongo connection string
	Name           string // mongo database name
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// ProblemListConfig bounds GET /api/problems.
type ProblemListConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8000"),
		LogLevel:           getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		DB: DBConfig{
			Backend:        strings.ToLower(getEnv("DB_BACKEND", BackendSQLite)),
			Path:           getEnv("DB_PATH", "./data/solvix.db"),
			URL:            getEnv("DATABASE_URL", ""),
			Name:           getEnv("DATABASE_NAME", "solvix"),
			MaxRetries:     getEnvInt("DB_MAX_RETRIES", 3),
			RetryBaseDelay: getEnvDuration("DB_RETRY_BASE_DELAY", 50*time.Millisecond),
		},
		Problems: ProblemListConfig{
			DefaultLimit: getEnvInt("PROBLEM_LIST_DEFAULT_LIMIT", 50),
			MaxLimit:     getEnvInt("PROBLEM_LIST_MAX_LIMIT", 200),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.DB.Backend {
	case BackendSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case BackendMongo:
		if c.DB.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the mongo backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("DB_BACKEND must be one of sqlite, mongo, memory (got %q)", c.DB.Backend)
	}
	if c.DB.MaxRetries < 0 {
		return fmt.Errorf("DB_MAX_RETRIES must be >= 0")
	}
	if c.Problems.DefaultLimit <= 0 || c.Problems.MaxLimit <= 0 {
		return fmt.Errorf("PROBLEM_LIST_DEFAULT_LIMIT and PROBLEM_LIST_MAX_LIMIT must be > 0")
	}
	if c.Problems.DefaultLimit > c.Problems.MaxLimit {
		return fmt.Errorf("PROBLEM_LIST_DEFAULT_LIMIT cannot exceed PROBLEM_LIST_MAX_LIMIT")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	return nil
}

// DatabaseURLSet reports whether a connection string was configured.
func (c *Config) DatabaseURLSet() bool {
	return c.DB.URL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return fallback
	}
	return level
}
