package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/hbnb/internal/model"
)

func init() {
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create <Class>",
	Short: "Create a new instance and print its id",
	Long: `Create a new instance of a class, save it and print its id.

Example:
  hbnb create City`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	c, _ := mustOpenConsole()

	id, err := c.Create(argAt(args, 0))
	if err != nil {
		exitWithConsoleError(err)
	}

	if humanOutput {
		outputHuman("%s\n", id)
		return nil
	}
	kind := model.Kind(args[0])
	return outputJSON(CreateResponse{ID: id, Class: string(kind), Key: model.Key(kind, id)})
}

// argAt returns args[i], or "" when absent so the console reports the
// missing argument with its usual message.
func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
