// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/listing-pipeline/internal/artifacts"
)

// Config represents the service configuration that can be loaded from a JSON file.
// All fields are optional; missing values come from the environment or Defaults.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty keeps runs in memory
	RedisURL    string `json:"redis_url,omitempty"`    // Redis URL for event publishing; empty disables it

	// Generation
	APIKey                string  `json:"api_key,omitempty"`                // Gemini API key; empty uses template content only
	GenerationConcurrency int     `json:"generation_concurrency,omitempty"` // Parallel platform/section generations
	GenerationRPS         float64 `json:"generation_rps,omitempty"`         // Provider calls per second

	// Review
	ReviewMode    string `json:"review_mode,omitempty"`     // auto or manual
	ReviewDelayMs int    `json:"review_delay_ms,omitempty"` // Auto-approval delay
	JWTSecret     string `json:"jwt_secret,omitempty"`      // HS256 secret for reviewer tokens

	// Artifacts
	MinIO artifacts.MinIOConfig `json:"minio"`

	// Behavior
	Verbose  bool   `json:"verbose,omitempty"`   // Print detailed debug information
	LogLevel string `json:"log_level,omitempty"` // debug, info, warn, error
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                  8080,
		GenerationConcurrency: 3,
		GenerationRPS:         5,
		ReviewMode:            "manual",
		ReviewDelayMs:         500,
		MinIO:                 artifacts.MinIOConfig{Bucket: "listing-artifacts"},
		LogLevel:              "info",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads the configuration held in environment variables. Malformed
// numeric values are ignored.
func FromEnv() Config {
	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		ReviewMode:  os.Getenv("REVIEW_MODE"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		MinIO: artifacts.MinIOConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    os.Getenv("MINIO_BUCKET"),
			PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		},
	}
	if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.Port = v
	}
	if v, err := strconv.ParseBool(os.Getenv("MINIO_USE_SSL")); err == nil {
		cfg.MinIO.UseSSL = v
	}
	return cfg
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those depend on the
// command being run.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	switch strings.ToLower(c.ReviewMode) {
	case "", "auto", "manual":
	default:
		return fmt.Errorf("config error: 'review_mode' must be auto or manual, got %q", c.ReviewMode)
	}

	// Validate numeric ranges
	if c.ReviewDelayMs < 0 {
		return fmt.Errorf("config error: 'review_delay_ms' must be non-negative")
	}
	if c.GenerationConcurrency < 0 {
		return fmt.Errorf("config error: 'generation_concurrency' must be non-negative")
	}
	if c.GenerationRPS < 0 {
		return fmt.Errorf("config error: 'generation_rps' must be non-negative")
	}

	if c.MinIO.Enabled() {
		if err := c.MinIO.Validate(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	return nil
}

// ReviewDelay is ReviewDelayMs as a duration.
func (c *Config) ReviewDelay() time.Duration {
	return time.Duration(c.ReviewDelayMs) * time.Millisecond
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer config file, environment and built-in values.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.ReviewMode == "" {
		result.ReviewMode = defaults.ReviewMode
	}
	if result.JWTSecret == "" {
		result.JWTSecret = defaults.JWTSecret
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.MinIO.Endpoint == "" {
		result.MinIO.Endpoint = defaults.MinIO.Endpoint
	}
	if result.MinIO.AccessKey == "" {
		result.MinIO.AccessKey = defaults.MinIO.AccessKey
	}
	if result.MinIO.SecretKey == "" {
		result.MinIO.SecretKey = defaults.MinIO.SecretKey
	}
	if result.MinIO.Bucket == "" {
		result.MinIO.Bucket = defaults.MinIO.Bucket
	}
	if result.MinIO.Region == "" {
		result.MinIO.Region = defaults.MinIO.Region
	}
	if result.MinIO.PublicURL == "" {
		result.MinIO.PublicURL = defaults.MinIO.PublicURL
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.ReviewDelayMs == 0 {
		result.ReviewDelayMs = defaults.ReviewDelayMs
	}
	if result.GenerationConcurrency == 0 {
		result.GenerationConcurrency = defaults.GenerationConcurrency
	}
	if result.GenerationRPS == 0 {
		result.GenerationRPS = defaults.GenerationRPS
	}

	// Bool fields: cannot distinguish unset from false, so only true propagates
	result.Verbose = result.Verbose || defaults.Verbose
	result.MinIO.UseSSL = result.MinIO.UseSSL || defaults.MinIO.UseSSL

	return result
}

// Resolve layers c over the environment and Defaults, then validates the result.
func Resolve(c *Config) (Config, error) {
	if c == nil {
		c = &Config{}
	}
	env := FromEnv()
	merged := c.MergeWithDefaults(env)
	merged = merged.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}
