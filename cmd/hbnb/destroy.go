package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/hbnb/internal/model"
)

func init() {
	rootCmd.AddCommand(destroyCmd)
}

var destroyCmd = &cobra.Command{
	Use:   "destroy <Class> <id>",
	Short: "Delete one instance",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runDestroy,
}

func runDestroy(cmd *cobra.Command, args []string) error {
	c, _ := mustOpenConsole()

	kindName, id := argAt(args, 0), argAt(args, 1)
	if err := c.Destroy(kindName, id); err != nil {
		exitWithConsoleError(err)
	}

	key := model.Key(model.Kind(kindName), id)
	if humanOutput {
		outputHuman("Destroyed %s\n", key)
		return nil
	}
	return outputJSON(StatusResponse{Status: "destroyed", Key: key})
}
