// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Site settings
	SiteName string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	CacheTTL       time.Duration

	// S3-compatible image storage (optional)
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Listing sizes
	BlogPageSize       int // posts per blog index page
	HomeBlogLimit      int // blog highlights on the home page
	HomePortfolioLimit int // portfolio highlights on the home page
	SearchPageSize     int

	// Public rate limit
	RateLimit       int
	RateLimitWindow time.Duration
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if a value cannot be
// parsed or if critical values are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		SiteName: envOrDefault("SITE_NAME", "folio"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "folio"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "folio"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "folio-images"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}

	var err error
	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"BLOG_PAGE_SIZE", 1, &cfg.BlogPageSize},
		{"HOME_BLOG_LIMIT", 3, &cfg.HomeBlogLimit},
		{"HOME_PORTFOLIO_LIMIT", 4, &cfg.HomePortfolioLimit},
		{"SEARCH_PAGE_SIZE", 10, &cfg.SearchPageSize},
		{"RATE_LIMIT", 120, &cfg.RateLimit},
		{"POSTGRES_MAX_CONNS", 10, &cfg.DBMaxConns},
	}
	for _, v := range ints {
		if *v.dst, err = positiveIntOrDefault(v.key, v.fallback); err != nil {
			return nil, err
		}
	}

	if cfg.CacheTTL, err = durationOrDefault("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = durationOrDefault("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// positiveIntOrDefault reads a positive integer, returning fallback if unset.
func positiveIntOrDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

// durationOrDefault reads a Go duration string such as "90s".
func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}
