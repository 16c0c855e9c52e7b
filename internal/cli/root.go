package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bestiary",
	Short: "Import creature definitions into a relational store",
	Long: `bestiary imports a creatures CSV, a bios CSV and a directory of battle sprites
into the creature table. Class, race, trait and source names are resolved
against the existing reference tables, and every creature is inserted or
updated by slug. The whole run is one transaction: either every row lands
or none does.

Exit Codes:
  0  - Success (or validated, with --dry-run)
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - Input data rejected (missing column, unknown reference, missing sprite)
  13 - Upsert or commit failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// -h is --host on import, so help has no shorthand.
	rootCmd.PersistentFlags().Bool("help", false, "Help for bestiary")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
