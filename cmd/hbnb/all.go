package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/hbnb/internal/model"
)

func init() {
	rootCmd.AddCommand(allCmd)
}

var allCmd = &cobra.Command{
	Use:   "all [Class]",
	Short: "List all instances, optionally of one class",
	Long: `List all instances in insertion order, optionally only those of one class.

Example:
  hbnb all
  hbnb all Place --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAll,
}

func runAll(cmd *cobra.Command, args []string) error {
	c, _ := mustOpenConsole()

	entities, err := c.List(argAt(args, 0))
	if err != nil {
		exitWithConsoleError(err)
	}

	if humanOutput {
		items := make([]any, len(entities))
		for i, e := range entities {
			items[i] = e.String()
		}
		outputHuman("%s\n", model.FormatLiteral(items))
		return nil
	}
	return outputJSON(entitiesJSON(entities))
}
