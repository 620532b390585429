package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/listing-pipeline/internal/artifacts"
	"github.com/jonathan/listing-pipeline/internal/config"
	"github.com/jonathan/listing-pipeline/internal/generation"
	"github.com/jonathan/listing-pipeline/internal/llm"
	"github.com/jonathan/listing-pipeline/internal/logging"
	"github.com/jonathan/listing-pipeline/internal/pipeline"
	"github.com/jonathan/listing-pipeline/internal/schemas"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// resolveConfig loads the --config file, applies root flags that were set
// explicitly and fills the rest from the environment and defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if rootConfigPath != "" {
		loaded, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = rootVerbose
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = rootLogLevel
	}

	resolved, err := config.Resolve(&cfg)
	if err != nil {
		return config.Config{}, err
	}
	if resolved.Verbose && rootConfigPath != "" {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Loaded config from: %s\n", rootConfigPath)
	}
	return resolved, nil
}

// newLogger logs to stderr. One-off commands stay quiet unless verbose.
func newLogger(cmd *cobra.Command, cfg config.Config, always bool) *zap.Logger {
	if !always && !cfg.Verbose {
		return zap.NewNop()
	}
	level := cfg.LogLevel
	if cfg.Verbose && !cmd.Flags().Changed("log-level") {
		level = "debug"
	}
	return logging.New(logging.Config{Level: level, Output: cmd.ErrOrStderr(), Name: "listing_agent"})
}

// newGenerator returns the Gemini-backed generator when an API key is
// configured and nil otherwise, which callers treat as templates only.
// The returned close func is never nil.
func newGenerator(ctx context.Context, cfg config.Config, logger *zap.Logger) (generation.Generator, func(), error) {
	if cfg.APIKey == "" {
		logger.Info("no API key configured, using template content")
		return nil, func() {}, nil
	}

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	guard := llm.DefaultGuardConfig()
	guard.RequestsPerSecond = cfg.GenerationRPS
	guarded := llm.NewGuardedClient(client, guard, logger)

	gen := generation.NewGeminiGenerator(guarded, logger)
	return gen, func() { _ = guarded.Close() }, nil
}

// newArtifactStore uses MinIO when configured and keeps artifacts in memory otherwise.
func newArtifactStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (artifacts.Store, error) {
	if !cfg.MinIO.Enabled() {
		return artifacts.NewMemoryStore(pipeline.DefaultArtifactBaseURL), nil
	}
	store, err := artifacts.NewMinIOStore(ctx, cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO: %w", err)
	}
	logger.Info("artifacts stored in MinIO",
		zap.String("endpoint", cfg.MinIO.Endpoint),
		zap.String("bucket", cfg.MinIO.Bucket))
	return store, nil
}

// loadProduct reads and schema-validates a product JSON file.
func loadProduct(path string) (*types.ProductData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read product file: %w", err)
	}
	if err := schemas.ValidateProduct(data); err != nil {
		return nil, fmt.Errorf("invalid product %s: %w", path, err)
	}
	var product types.ProductData
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product JSON: %w", err)
	}
	return &product, nil
}

// parsePlatforms splits a comma-separated platform list. Empty means none.
func parsePlatforms(list string) ([]types.Platform, error) {
	var out []types.Platform
	for _, raw := range strings.Split(list, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p, ok := types.ParsePlatform(raw)
		if !ok {
			return nil, fmt.Errorf("unknown platform: %s", raw)
		}
		out = append(out, p)
	}
	return out, nil
}

// writeJSON writes v indented to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if path == "" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
