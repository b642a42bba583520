package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/hbnb/internal/console"
)

func init() {
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update <Class> <id> <attribute> <value> | update <Class> <id> <dict>",
	Short: "Set attributes on an instance",
	Long: `Set one attribute, or several at once from a dictionary literal.

The value is converted to the type the attribute already has (number_rooms
stays an integer, latitude a float); new attributes are stored as text.
A dictionary update is applied all-or-nothing.

Example:
  hbnb update City 0b5c2a4e name Paris
  hbnb update Place 7d1f '{"number_rooms": 3, "latitude": 48.85}'`,
	Args: cobra.ArbitraryArgs,
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	c, _ := mustOpenConsole()

	if err := applyUpdate(c, args); err != nil {
		exitWithConsoleError(err)
	}

	e, err := c.Get(args[0], args[1])
	if err != nil {
		exitWithConsoleError(err)
	}
	if humanOutput {
		outputHuman("%s\n", e)
		return nil
	}
	return outputJSON(entityJSON(e))
}

// applyUpdate runs the single-attribute or dictionary form of update.
func applyUpdate(c *console.Console, args []string) error {
	kindName, id := argAt(args, 0), argAt(args, 1)

	if len(args) > 2 && strings.HasPrefix(strings.TrimSpace(args[2]), "{") {
		if _, err := c.Get(kindName, id); err != nil {
			return err
		}
		attrs, err := console.ParseDict(strings.Join(args[2:], " "))
		if err != nil {
			return &console.UsageError{Msg: console.MsgInvalidDict, Err: err}
		}
		return c.UpdateBatch(kindName, id, attrs)
	}

	values := make([]any, 0, 2)
	for _, a := range args[min(2, len(args)):min(4, len(args))] {
		values = append(values, a)
	}
	return c.Update(kindName, id, values...)
}
