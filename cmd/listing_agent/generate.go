package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-pipeline/internal/generation"
	"github.com/jonathan/listing-pipeline/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate product page HTML for a platform",
	Long: `Generates HTML for one section of a product page, or the full page when --section is
omitted, and writes it to stdout or --out.

Content comes from the language model when an API key is configured and from the built-in
templates otherwise or when the model fails.`,
	RunE: runGenerate,
}

var (
	generateProduct  string
	generatePlatform string
	generateSection  string
	generateOutput   string
)

func init() {
	generateCmd.Flags().StringVarP(&generateProduct, "product", "p", "", "Path to product JSON file (required)")
	generateCmd.Flags().StringVar(&generatePlatform, "platform", "", "Target platform (required)")
	generateCmd.Flags().StringVarP(&generateSection, "section", "s", "", "Section key: hero, gallery, features, specifications, benefits, warranty, faq (default full page)")
	generateCmd.Flags().StringVarP(&generateOutput, "out", "o", "", "Path to output HTML file (optional)")

	for _, name := range []string{"product", "platform"} {
		if err := generateCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg, false)
	defer func() { _ = logger.Sync() }()

	product, err := loadProduct(generateProduct)
	if err != nil {
		return err
	}
	platform, ok := types.ParsePlatform(generatePlatform)
	if !ok {
		return fmt.Errorf("unknown platform: %s", generatePlatform)
	}

	gen, closeGen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeGen()
	if gen == nil {
		gen = generation.FallbackGenerator{}
	}

	resp, err := generation.HandleContentRequest(ctx, generation.WithFallback(gen, logger), generation.ContentRequest{
		Product:  product,
		Platform: platform,
		Section:  types.SectionKey(generateSection),
	})
	if err != nil {
		return err
	}
	if resp.UsedFallback {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: model output unavailable, used template content")
	}

	if generateOutput == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.HTML)
		return err
	}
	if err := os.WriteFile(generateOutput, []byte(resp.HTML), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
