package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matsen/hbnb/internal/console"
)

func init() {
	rootCmd.AddCommand(consoleCmd)
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive command interpreter",
	Long: `Start the interactive command interpreter (also the default when hbnb
is run without a subcommand).

Commands:
  create <Class>                        show <Class> <id>
  destroy <Class> <id>                  all [Class]
  count <Class>                         update <Class> <id> <attr> <value>
  <Class>.all()                         <Class>.count()
  <Class>.show("<id>")                  <Class>.destroy("<id>")
  <Class>.update("<id>", "<attr>", <value>)
  <Class>.update("<id>", {"<attr>": <value>, ...})
  quit | EOF

The prompt is shown only when input is a terminal, so scripts can pipe
commands in.`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func runConsole(cmd *cobra.Command, args []string) error {
	c, _ := mustOpenConsole()

	it := console.NewInterpreter(c)
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		it.Prompt = ""
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := it.Run(ctx, os.Stdin, os.Stdout); err != nil && err != context.Canceled {
		exitWithError(ExitError, "%v", err)
	}
	return nil
}
