// Package cli wires configuration, logging and the scrape pipeline into
// the kiwirates commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kiwirates",
	Short: "Scrapes NZ mortgage rates from interest.co.nz into Postgres",
	Long: `kiwirates scrapes the mortgage rate tables on interest.co.nz/borrowing,
normalizes bank names and tenor labels, keeps the lowest rate per bank,
tenor and rate type, and upserts the result into Postgres.

serve exposes the scraper over HTTP for Cloud Run style deployments,
scrape runs one cycle from the command line.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("kiwirates " + Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
