// Package main provides the listing_agent CLI: the HTTP API server and
// one-off pipeline, compliance and content commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	rootConfigPath string
	rootVerbose    bool
	rootLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "listing_agent",
	Short: "E-commerce listing pipeline",
	Long: `listing_agent prepares product listings for marketplaces: it verifies assets and
specs, checks regional compliance, generates platform content and distributes approved listings.

Configuration is read from --config, then the environment (.env is loaded), then built-in defaults.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to config.json file")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
