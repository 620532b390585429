package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-pipeline/internal/compliance"
	"github.com/jonathan/listing-pipeline/internal/observability"
	"github.com/jonathan/listing-pipeline/internal/types"
)

var checkComplianceCmd = &cobra.Command{
	Use:   "check-compliance",
	Short: "Check compliance attributes against platform rules",
	Long: `Checks a product's compliance attributes (EAN, WEEE registration, energy label, ...)
against the rules of each target platform and reports the German registration status.

Attributes come from --attributes or from the "compliance" object of --product.`,
	RunE: runCheckCompliance,
}

var (
	checkProduct    string
	checkAttributes string
	checkPlatforms  string
	checkJSON       bool
	checkStrict     bool
)

func init() {
	checkComplianceCmd.Flags().StringVarP(&checkProduct, "product", "p", "", "Path to product JSON file")
	checkComplianceCmd.Flags().StringVarP(&checkAttributes, "attributes", "a", "", "Path to compliance attributes JSON file")
	checkComplianceCmd.Flags().StringVar(&checkPlatforms, "platforms", "", "Comma-separated platforms (default all)")
	checkComplianceCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the report as JSON")
	checkComplianceCmd.Flags().BoolVar(&checkStrict, "strict", false, "Exit with an error when issues are found")

	rootCmd.AddCommand(checkComplianceCmd)
}

func runCheckCompliance(cmd *cobra.Command, _ []string) error {
	if (checkProduct == "") == (checkAttributes == "") {
		return fmt.Errorf("exactly one of --product or --attributes must be provided")
	}

	var (
		attrs   types.ComplianceAttributes
		listing compliance.Listing
	)
	if checkProduct != "" {
		product, err := loadProduct(checkProduct)
		if err != nil {
			return err
		}
		if product.Compliance != nil {
			attrs = *product.Compliance
		}
		listing = compliance.Listing{
			Title:       product.Title,
			Description: product.Description,
			Images:      product.Images(),
		}
	} else {
		data, err := os.ReadFile(checkAttributes)
		if err != nil {
			return fmt.Errorf("failed to read attributes file: %w", err)
		}
		if err := json.Unmarshal(data, &attrs); err != nil {
			return fmt.Errorf("failed to unmarshal attributes JSON: %w", err)
		}
	}

	targets, err := parsePlatforms(checkPlatforms)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		targets = types.AllPlatforms
	}

	report, err := compliance.Aggregate(targets, attrs, listing)
	if err != nil {
		return err
	}

	if checkJSON {
		if err := writeJSON(cmd.OutOrStdout(), "", report); err != nil {
			return err
		}
	} else {
		observability.NewPrinter(cmd.OutOrStdout()).PrintComplianceReport(report)
	}

	if checkStrict && !report.Passed() {
		return fmt.Errorf("compliance check found %d issues", report.TotalIssues)
	}
	return nil
}
