package main

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/hbnb/internal/export"
	"github.com/matsen/hbnb/internal/model"
)

var (
	exportFormat string
	exportOutput string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Output format: json, yaml or msgpack (default from config)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
}

var exportCmd = &cobra.Command{
	Use:   "export [Class]",
	Short: "Export instances as JSON, YAML or MessagePack",
	Long: `Export every instance, or the instances of one class, in the persisted
shape keyed by "<Class>.<id>". JSON output matches the snapshot file.

Example:
  hbnb export --format yaml
  hbnb export Place --format msgpack -o places.msgpack`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	c, s := mustOpenConsole()

	name := exportFormat
	if name == "" {
		name = s.ExportFormat
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	var kind model.Kind
	if len(args) == 1 {
		if _, err := c.List(args[0]); err != nil {
			exitWithConsoleError(err)
		}
		kind = model.Kind(args[0])
	}

	out := os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			exitWithError(ExitDataError, "creating %s: %v", exportOutput, err)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	if err := export.Write(w, c.Registry(), kind, format); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if err := w.Flush(); err != nil {
		exitWithError(ExitDataError, "writing export: %v", err)
	}
	return nil
}
