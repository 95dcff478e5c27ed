package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Lock modes for serializing reconciliations of the same plan procedure
const (
	LockModeAuto  = "auto"
	LockModeRow   = "row"
	LockModeLocal = "local"
	LockModeRedis = "redis"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string `env:"PORT" envDefault:"3000"`

	// Database configuration
	DBType            string `env:"DB_TYPE" envDefault:"sqlite"` // mysql, postgres, sqlite, sqlserver
	DBHost            string `env:"DB_HOST" envDefault:"localhost"`
	DBPort            string `env:"DB_PORT" envDefault:"3306"`
	DBDatabase        string `env:"DB_DATABASE"`
	DBUser            string `env:"DB_USER"`
	DBPassword        string `env:"DB_PASSWORD"`
	DBConnectionLimit int    `env:"DB_CONNECTION_LIMIT" envDefault:"5"`
	DBLogLevel        string `env:"DB_LOG_LEVEL" envDefault:"warn"`
	SeedOnStart       bool   `env:"SEED_ON_START" envDefault:"true"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // text or json

	// Assignment locking
	LockMode  string        `env:"LOCK_MODE" envDefault:"auto"`
	LockTTL   time.Duration `env:"LOCK_TTL" envDefault:"30s"`
	LockRetry time.Duration `env:"LOCK_RETRY" envDefault:"50ms"`
	RedisURL  string        `env:"REDIS_URL"`
}

// Load reads .env files when present, then the environment
func Load() (*Config, error) {
	if _, err := LoadEnvFiles(".env", ".env.local"); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads the files that exist, returning how many were loaded.
// Variables already present in the environment are not overridden.
func LoadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if file == "" {
			continue
		}
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Validate checks required fields and enumerations
func (c *Config) Validate() error {
	c.DBType = strings.ToLower(c.DBType)
	c.LockMode = strings.ToLower(c.LockMode)

	if c.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	switch c.DBType {
	case "mysql", "mariadb", "postgres", "postgresql", "sqlite", "sqlserver", "mssql":
	default:
		return fmt.Errorf("unsupported DB_TYPE: %s", c.DBType)
	}
	if c.DBType != "sqlite" && c.DBUser == "" {
		return fmt.Errorf("DB_USER is required for %s", c.DBType)
	}
	if c.DBConnectionLimit < 1 {
		return fmt.Errorf("DB_CONNECTION_LIMIT must be positive, got %d", c.DBConnectionLimit)
	}

	switch c.LockMode {
	case LockModeAuto, LockModeLocal:
	case LockModeRow:
		if !c.SupportsRowLocks() {
			return fmt.Errorf("LOCK_MODE 'row' is not supported for %s", c.DBType)
		}
	case LockModeRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when LOCK_MODE is 'redis'")
		}
	default:
		return fmt.Errorf("LOCK_MODE must be one of auto, row, local, redis, got '%s'", c.LockMode)
	}
	if c.LockTTL <= 0 || c.LockRetry <= 0 {
		return fmt.Errorf("LOCK_TTL and LOCK_RETRY must be positive")
	}
	return nil
}

// SupportsRowLocks reports whether the configured dialect emits SELECT ... FOR UPDATE
func (c *Config) SupportsRowLocks() bool {
	switch c.DBType {
	case "mysql", "mariadb", "postgres", "postgresql":
		return true
	}
	return false
}

// ResolvedLockMode turns "auto" into the concrete mode for the configured dialect
func (c *Config) ResolvedLockMode() string {
	if c.LockMode != LockModeAuto {
		return c.LockMode
	}
	if c.SupportsRowLocks() {
		return LockModeRow
	}
	return LockModeLocal
}
