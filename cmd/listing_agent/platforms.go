package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/listing-pipeline/internal/observability"
	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms [PLATFORM]",
	Short: "List marketplace requirements",
	Long: `Lists the content and image requirements of every supported marketplace, or prints
the full requirements of one platform as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlatformsCmd,
}

var platformsJSON bool

func init() {
	platformsCmd.Flags().BoolVar(&platformsJSON, "json", false, "Print requirements as JSON")
	rootCmd.AddCommand(platformsCmd)
}

func runPlatformsCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		p, _ := types.ParsePlatform(args[0])
		req, err := platforms.Lookup(p)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), "", req)
	}

	all := platforms.All()
	if platformsJSON {
		return writeJSON(cmd.OutOrStdout(), "", all)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintPlatforms(all)
	return nil
}
