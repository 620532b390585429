package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-pipeline/internal/db"
	"github.com/jonathan/listing-pipeline/internal/observability"
	"github.com/jonathan/listing-pipeline/internal/pipeline"
	"github.com/jonathan/listing-pipeline/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the listing pipeline for one product",
	Long: `Runs all eight pipeline steps for a product JSON file and prints the run summary:
asset verification -> spec verification -> compliance check -> banner generation ->
thumbnail generation -> SEO optimization -> human review -> distribution.

Human review is auto-approved after the configured delay. The run is stored in PostgreSQL
when DATABASE_URL is set.`,
	RunE: runPipelineCmd,
}

var (
	runProduct   string
	runChannel   string
	runPlatforms string
	runLanguage  string
	runCountry   string
	runSkip      string
	runOutput    string
)

func init() {
	runCommand.Flags().StringVarP(&runProduct, "product", "p", "", "Path to product JSON file (required)")
	runCommand.Flags().StringVar(&runChannel, "channel", string(types.ChannelThirdParty), "Sales channel: d2c or 3p")
	runCommand.Flags().StringVar(&runPlatforms, "platforms", "", "Comma-separated target platforms (required for 3p)")
	runCommand.Flags().StringVar(&runLanguage, "language", "", "Content language (default de-DE)")
	runCommand.Flags().StringVar(&runCountry, "country", "", "Target country code (default de)")
	runCommand.Flags().StringVar(&runSkip, "skip", "", "Comma-separated step IDs to skip")
	runCommand.Flags().StringVarP(&runOutput, "out", "o", "", "Path to write the run JSON (optional)")

	if err := runCommand.MarkFlagRequired("product"); err != nil {
		panic(fmt.Sprintf("failed to mark product flag as required: %v", err))
	}

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg, false)
	defer func() { _ = logger.Sync() }()

	product, err := loadProduct(runProduct)
	if err != nil {
		return err
	}
	targets, err := parsePlatforms(runPlatforms)
	if err != nil {
		return err
	}

	req := types.PipelineRequest{
		ProductID:    product.ID,
		ProductTitle: product.Title,
		ModelNumber:  product.ModelNumber,
		Channel:      types.Channel(runChannel),
		Platforms:    targets,
		Language:     runLanguage,
		CountryCode:  runCountry,
		Product:      product,
		Compliance:   product.Compliance,
	}

	var store pipeline.Store
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		store = database
	}

	artifactStore, err := newArtifactStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	gen, closeGen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeGen()

	orch := pipeline.New(pipeline.Options{
		Store:       store,
		Generator:   gen,
		Artifacts:   artifactStore,
		ReviewMode:  pipeline.ReviewAuto,
		ReviewDelay: cfg.ReviewDelay(),
		Concurrency: cfg.GenerationConcurrency,
		Logger:      logger,
	})
	defer orch.Close()

	run, err := orch.Create(ctx, req)
	if err != nil {
		return err
	}
	for _, step := range strings.Split(runSkip, ",") {
		if step = strings.TrimSpace(step); step == "" {
			continue
		}
		if _, err := orch.Skip(ctx, run.ID, step); err != nil {
			return err
		}
	}

	id := run.ID
	run, err = orch.Execute(ctx, id)
	if err != nil {
		return fmt.Errorf("pipeline %s failed: %w", id, err)
	}

	view := pipeline.NewView(run)
	observability.NewPrinter(cmd.OutOrStdout()).PrintRunSummary(&view)
	if runOutput != "" {
		if err := writeJSON(cmd.OutOrStdout(), runOutput, view); err != nil {
			return err
		}
	}
	if run.Status == pipeline.RunFailed {
		return fmt.Errorf("pipeline %s finished with %d failed steps", id, view.Summary.FailedSteps)
	}
	return nil
}
