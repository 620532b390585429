package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-pipeline/internal/gtin"
	"github.com/jonathan/listing-pipeline/internal/observability"
)

var validateEANCmd = &cobra.Command{
	Use:   "validate-ean CODE...",
	Short: "Validate EAN-13 codes",
	Long: `Validates one or more EAN-13 codes. Spaces and hyphens are ignored. For a code with a
wrong check digit the expected digit is suggested.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidateEAN,
}

func init() {
	rootCmd.AddCommand(validateEANCmd)
}

func runValidateEAN(cmd *cobra.Command, args []string) error {
	printer := observability.NewPrinter(cmd.OutOrStdout())
	out := cmd.OutOrStdout()

	invalid := 0
	for _, code := range args {
		result := gtin.Validate(code)
		printer.PrintEAN(code, result)
		if result.Valid {
			continue
		}
		invalid++

		normalized := gtin.Normalize(code)
		if len(normalized) != gtin.Length {
			continue
		}
		if digit, err := gtin.CheckDigit(normalized[:gtin.Length-1]); err == nil {
			_, _ = fmt.Fprintf(out, "   expected check digit %d: %s%d\n", digit, normalized[:gtin.Length-1], digit)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d codes are invalid", invalid, len(args))
	}
	return nil
}
