// Package config handles application configuration via environment variables.
// It uses kelseyhightower/envconfig for parsing and provides sensible defaults.
// A .env file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
// Values are loaded from environment variables with the prefix "APP".
// Example: APP_PORT=8080, APP_LOG_LEVEL=debug
//
// Every variable also resolves without the prefix (DB_HOST, PORT, ...),
// which keeps existing .env files working.
type Config struct {
	// Server configuration (embedded to flatten env vars)
	Server ServerConfig

	// Database configuration (embedded to flatten env vars)
	Database DatabaseConfig

	// Logging configuration (embedded to flatten env vars)
	Log LogConfig

	// RateLimit configuration for the public API
	RateLimit RateLimitConfig

	// Metrics configuration
	Metrics MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP server port (default: 5000)
	Port int `envconfig:"PORT" default:"5000"`

	// Host is the HTTP server host (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// ReadTimeout is the maximum duration for reading the entire request (default: 10s)
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`

	// WriteTimeout is the maximum duration before timing out writes of the response (default: 30s)
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish (default: 30s)
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// Environment is the deployment environment. "development" exposes
	// error details in 500 responses (default: production)
	Environment string `envconfig:"ENV" default:"production"`
}

// DatabaseConfig holds PostgreSQL connection and pool settings.
type DatabaseConfig struct {
	// Host is the database host (default: localhost)
	Host string `envconfig:"DB_HOST" default:"localhost"`

	// Port is the database port (default: 5432)
	Port int `envconfig:"DB_PORT" default:"5432"`

	// User is the database user (default: postgres)
	User string `envconfig:"DB_USER" default:"postgres"`

	// Password is the database password (required in production)
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`

	// Name is the database name (default: catalog)
	Name string `envconfig:"DB_NAME" default:"catalog"`

	// SSLMode is the SSL mode for the connection (default: disable)
	SSLMode string `envconfig:"DB_SSLMODE" default:"disable"`

	// MaxPoolSize is the maximum number of connections leased at once (default: 20)
	MaxPoolSize int `envconfig:"DB_MAX_POOL_SIZE" default:"20"`

	// IdleTimeout closes connections idle for longer than this (default: 30s)
	IdleTimeout time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"30s"`

	// AcquireTimeout bounds the wait for a pooled connection (default: 2s)
	AcquireTimeout time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`

	// HealthTimeout bounds the startup probe and health checks (default: 2s)
	HealthTimeout time.Duration `envconfig:"DB_HEALTH_TIMEOUT" default:"2s"`

	// DrainTimeout is the grace period for in-flight leases at shutdown (default: 10s)
	DrainTimeout time.Duration `envconfig:"DB_DRAIN_TIMEOUT" default:"10s"`

	// AutoMigrate applies embedded schema migrations at startup (default: true)
	AutoMigrate bool `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the log level: debug, info, warn, error (default: info)
	Level string `envconfig:"LOG_LEVEL" default:"info"`

	// Format is the log format: json, text, plain (default: plain)
	Format string `envconfig:"LOG_FORMAT" default:"plain"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	// Enabled toggles the limiter (default: true)
	Enabled bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`

	// Requests is the number of requests allowed per period (default: 30)
	Requests int64 `envconfig:"RATE_LIMIT_REQUESTS" default:"30"`

	// Period is the window the request budget refills over (default: 5s)
	Period time.Duration `envconfig:"RATE_LIMIT_PERIOD" default:"5s"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint (default: true)
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`

	// Path is the metrics endpoint path (default: /metrics)
	Path string `envconfig:"METRICS_PATH" default:"/metrics"`
}

// DSN returns the PostgreSQL connection string. Credentials are escaped.
func (c *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Validate checks the pool settings for values the pool cannot work with.
func (c *DatabaseConfig) Validate() error {
	if c.MaxPoolSize < 1 || c.MaxPoolSize > math.MaxInt32 {
		return fmt.Errorf("DB_MAX_POOL_SIZE must be between 1 and %d, got %d", math.MaxInt32, c.MaxPoolSize)
	}
	if c.AcquireTimeout <= 0 {
		return fmt.Errorf("DB_ACQUIRE_TIMEOUT must be positive, got %s", c.AcquireTimeout)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("DB_IDLE_TIMEOUT must not be negative, got %s", c.IdleTimeout)
	}
	if c.HealthTimeout <= 0 {
		return fmt.Errorf("DB_HEALTH_TIMEOUT must be positive, got %s", c.HealthTimeout)
	}
	return nil
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment reports whether the server runs in development mode.
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads configuration from environment variables.
// It returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// Load each config section separately to flatten env var names
	// This allows env vars like APP_PORT instead of APP_SERVER_PORT
	if err := envconfig.Process("APP", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.RateLimit); err != nil {
		return nil, fmt.Errorf("failed to load rate limit config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Metrics); err != nil {
		return nil, fmt.Errorf("failed to load metrics config: %w", err)
	}

	if err := cfg.Database.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	return &cfg, nil
}
