package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(countCmd)
}

var countCmd = &cobra.Command{
	Use:   "count <Class>",
	Short: "Count the instances of a class",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCount,
}

func runCount(cmd *cobra.Command, args []string) error {
	c, _ := mustOpenConsole()

	kindName := argAt(args, 0)
	n, err := c.Count(kindName)
	if err != nil {
		exitWithConsoleError(err)
	}

	if humanOutput {
		outputHuman("%d\n", n)
		return nil
	}
	return outputJSON(CountResponse{Class: kindName, Count: n})
}
