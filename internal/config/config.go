package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the AdAudit reporting API.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ClickHouse ClickHouseConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Options    OptionsConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ClickHouseConfig configures the analytics events source.
type ClickHouseConfig struct {
	Enabled  bool
	Addr     string
	Database string
	User     string
	Password string
}

// AuthConfig configures JWT bearer authentication.
type AuthConfig struct {
	Enabled   bool
	Secret    string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// OptionsConfig configures the filter-option list cache.
type OptionsConfig struct {
	CacheTTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("ADAUDIT_HTTP_ADDR", ":8080"),
			Env:             getEnv("ADAUDIT_ENV", "development"),
			ShutdownTimeout: getDurationEnv("ADAUDIT_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("ADAUDIT_DB_HOST", "localhost"),
			Port:     getIntEnv("ADAUDIT_DB_PORT", 5432),
			User:     getEnv("ADAUDIT_DB_USER", "adaudit"),
			Password: getEnv("ADAUDIT_DB_PASSWORD", "adaudit_secret"),
			DBName:   getEnv("ADAUDIT_DB_NAME", "adaudit"),
			SSLMode:  getEnv("ADAUDIT_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("ADAUDIT_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("ADAUDIT_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("ADAUDIT_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("ADAUDIT_REDIS_PASSWORD", ""),
			DB:       getIntEnv("ADAUDIT_REDIS_DB", 0),
		},
		ClickHouse: ClickHouseConfig{
			Enabled:  getBoolEnv("ADAUDIT_CLICKHOUSE_ENABLED", true),
			Addr:     getEnv("ADAUDIT_CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("ADAUDIT_CLICKHOUSE_DB", "adaudit"),
			User:     getEnv("ADAUDIT_CLICKHOUSE_USER", "default"),
			Password: getEnv("ADAUDIT_CLICKHOUSE_PASSWORD", ""),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("ADAUDIT_AUTH_ENABLED", true),
			Secret:    getEnv("ADAUDIT_JWT_SECRET", ""),
			// SSE endpoints stay authenticated; EventSource clients pass
			// the token as a query parameter instead of a header.
			SkipPaths: getSliceEnv("ADAUDIT_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("ADAUDIT_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("ADAUDIT_RATE_LIMIT_RPS", 100),
			Burst:   getIntEnv("ADAUDIT_RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("ADAUDIT_LOG_LEVEL", "info"),
			Format: getEnv("ADAUDIT_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("ADAUDIT_METRICS_ENABLED", true),
			Path:    getEnv("ADAUDIT_METRICS_PATH", "/metrics"),
		},
		Options: OptionsConfig{
			CacheTTL: getDurationEnv("ADAUDIT_OPTIONS_CACHE_TTL", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return fmt.Errorf("ADAUDIT_JWT_SECRET is required when auth is enabled")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
