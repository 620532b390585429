package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/listing-pipeline/internal/artifacts"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "REDIS_URL", "GEMINI_API_KEY", "REVIEW_MODE", "JWT_SECRET", "LOG_LEVEL",
		"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_PUBLIC_URL", "MINIO_USE_SSL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"port": 9090,
		"database_url": "postgres://localhost/listings",
		"review_mode": "auto",
		"review_delay_ms": 250,
		"generation_rps": 2.5,
		"minio": {"endpoint": "localhost:9000", "bucket": "assets", "use_ssl": true},
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/listings", cfg.DatabaseURL)
	assert.Equal(t, "auto", cfg.ReviewMode)
	assert.Equal(t, 250*time.Millisecond, cfg.ReviewDelay())
	assert.Equal(t, 2.5, cfg.GenerationRPS)
	assert.Equal(t, "localhost:9000", cfg.MinIO.Endpoint)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Defaults()},
		{name: "empty", cfg: Config{}},
		{name: "bad port", cfg: Config{Port: 70000}, wantErr: "port"},
		{name: "bad review mode", cfg: Config{ReviewMode: "sometimes"}, wantErr: "review_mode"},
		{name: "uppercase review mode", cfg: Config{ReviewMode: "AUTO"}},
		{name: "negative delay", cfg: Config{ReviewDelayMs: -1}, wantErr: "review_delay_ms"},
		{name: "negative concurrency", cfg: Config{GenerationConcurrency: -2}, wantErr: "generation_concurrency"},
		{name: "negative rps", cfg: Config{GenerationRPS: -1}, wantErr: "generation_rps"},
		{
			name:    "minio without credentials",
			cfg:     Config{MinIO: artifacts.MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}},
			wantErr: "access_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		Port:       9000,
		ReviewMode: "auto",
		MinIO:      artifacts.MinIOConfig{Endpoint: "minio:9000"},
	}

	merged := partial.MergeWithDefaults(Defaults())

	// Custom values should be preserved
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "auto", merged.ReviewMode)
	assert.Equal(t, "minio:9000", merged.MinIO.Endpoint)

	// Default values should fill in empty fields
	assert.Equal(t, 500, merged.ReviewDelayMs)
	assert.Equal(t, 3, merged.GenerationConcurrency)
	assert.Equal(t, "listing-artifacts", merged.MinIO.Bucket)
	assert.Equal(t, "info", merged.LogLevel)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{APIKey: "key", Verbose: true}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "key", merged.APIKey)
	assert.True(t, merged.Verbose)
	assert.Zero(t, merged.Port)
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := FromEnv()
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "gemini-key", cfg.APIKey)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "localhost:9000", cfg.MinIO.Endpoint)
	assert.True(t, cfg.MinIO.UseSSL)
}

func TestFromEnv_IgnoresMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")

	cfg := FromEnv()
	assert.Zero(t, cfg.Port)
}

func TestResolve(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://env/listings")
	t.Setenv("REVIEW_MODE", "auto")

	cfg, err := Resolve(&Config{ReviewMode: "manual"})
	require.NoError(t, err)

	// File values win over the environment, the environment over defaults.
	assert.Equal(t, "manual", cfg.ReviewMode)
	assert.Equal(t, "postgres://env/listings", cfg.DatabaseURL)
	assert.Equal(t, 8080, cfg.Port)

	_, err = Resolve(&Config{ReviewMode: "never"})
	assert.Error(t, err)

	cfg, err = Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.ReviewMode)
}
