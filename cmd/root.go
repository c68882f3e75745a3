package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; subcommands attach themselves in their init.
var rootCmd = &cobra.Command{
	Use:   "workshop-catalog-updater",
	Short: "Maintains a versioned catalog of workshop mods",
	Long: `Maintains a versioned catalog of every known workshop mod:
identity, authorship, compatibility and curator annotations. Each run crawls
the workshop listing and detail pages, merges the extracted facts into the
catalog without touching curator-pinned fields, and writes a new numbered
snapshot plus a change-notes file.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
