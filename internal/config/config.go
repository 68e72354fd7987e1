package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Config holds all configuration for the application
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration
	LogLevel    string
	LogFormat   string

	MigrationsPath    string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
}

// Load loads configuration from environment variables. All missing required
// variables are reported together, not one at a time.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "text"),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
	}

	var errs *multierror.Error

	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		errs = multierror.Append(errs, fmt.Errorf("DATABASE_URL environment variable is required"))
	}
	if cfg.JWTSecret = os.Getenv("JWT_SECRET"); cfg.JWTSecret == "" {
		errs = multierror.Append(errs, fmt.Errorf("JWT_SECRET environment variable is required"))
	}

	ttl := getEnvOrDefault("TOKEN_TTL", "24h")
	d, err := time.ParseDuration(ttl)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("TOKEN_TTL must be a duration (got %q): %w", ttl, err))
	}
	cfg.TokenTTL = d

	maxOpen := getEnvOrDefault("DB_MAX_OPEN_CONNS", "25")
	if cfg.DBMaxOpenConns, err = strconv.Atoi(maxOpen); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must be an integer (got %q): %w", maxOpen, err))
	}
	maxIdle := getEnvOrDefault("DB_MAX_IDLE_CONNS", "5")
	if cfg.DBMaxIdleConns, err = strconv.Atoi(maxIdle); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("DB_MAX_IDLE_CONNS must be an integer (got %q): %w", maxIdle, err))
	}
	lifetime := getEnvOrDefault("DB_CONN_MAX_LIFETIME", "5m")
	if cfg.DBConnMaxLifetime, err = time.ParseDuration(lifetime); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("DB_CONN_MAX_LIFETIME must be a duration (got %q): %w", lifetime, err))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
