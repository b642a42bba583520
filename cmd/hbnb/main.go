// Package main provides the hbnb CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/hbnb/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool

	// filePath and indexPath override the configured locations
	filePath  string
	indexPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hbnb",
	Short: "Command interpreter for the hbnb object store",
	Long: `hbnb manages User, Place, City, State, Amenity and Review records.

Records live in memory and are saved to a single JSON snapshot file
after every change. Run without a subcommand to start the interactive
console; the subcommands run one operation and exit.

All subcommands output JSON by default; use --human for the console's
string form.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnv()
	},
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&filePath, "file", "", "Snapshot file (overrides "+config.EnvFilePath+" and config)")
	rootCmd.PersistentFlags().StringVar(&indexPath, "index", "", "SQLite index file (overrides "+config.EnvIndexPath+" and config)")
	rootCmd.Version = Version
}
