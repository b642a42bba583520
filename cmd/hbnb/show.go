package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <Class> <id>",
	Short: "Show one instance",
	Long: `Show one instance by class and id.

JSON output is the persisted form; --human prints the console string form.

Example:
  hbnb show City 0b5c2a4e-6f0e-4a57-9a8c-0e8d6a4f1c2b`,
	Args: cobra.MaximumNArgs(2),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	c, _ := mustOpenConsole()

	e, err := c.Get(argAt(args, 0), argAt(args, 1))
	if err != nil {
		exitWithConsoleError(err)
	}

	if humanOutput {
		outputHuman("%s\n", e)
		return nil
	}
	return outputJSON(entityJSON(e))
}
