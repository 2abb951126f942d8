package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database      DatabaseConfig
	Storage       StorageConfig
	Inbox         InboxConfig
	Observability ObservabilityConfig
	Log           LogConfig
	Parse         ParseConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Enabled reports whether records should be stored.
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type StorageConfig struct {
	LocalPath string // staging dir for uploads, empty for the OS temp dir
}

type InboxConfig struct {
	Dir      string
	Schedule string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

type LogConfig struct {
	Level  string
	Format string // text or json
}

type ParseConfig struct {
	Timeout time.Duration
	Workers int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "payments"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			LocalPath: getEnv("STORAGE_PATH", ""),
		},
		Inbox: InboxConfig{
			Dir:      getEnv("INBOX_DIR", "./inbox"),
			Schedule: getEnv("INBOX_SCHEDULE", "*/5 * * * *"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Parse: ParseConfig{
			Timeout: getEnvAsDuration("PARSE_TIMEOUT", 2*time.Minute),
			Workers: getEnvAsInt("PARSE_WORKERS", 0),
		},
	}

	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.Log.Format)
	}
	if cfg.Parse.Timeout <= 0 {
		return nil, errors.New("PARSE_TIMEOUT must be positive")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
