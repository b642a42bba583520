package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/hbnb/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set values in the global config file (~/.config/hbnb/config.yml).

Usage:
  hbnb config                          # Show effective settings and their source
  hbnb config file-path                # Get a configured value
  hbnb config file-path ~/hbnb.json    # Set a value
  hbnb config export-format yaml

Keys:
  file-path      Snapshot file (env HBNB_FILE_PATH, default file.json)
  index-path     SQLite index file (env HBNB_INDEX_PATH, default file.db)
  export-format  Default export format: json, yaml or msgpack`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	// No args: show effective settings
	if len(args) == 0 {
		s := mustResolveSettings()
		if humanOutput {
			outputHuman("file_path:     %s (%s)\n", s.FilePath, s.Sources[config.KeyFilePath])
			outputHuman("index_path:    %s (%s)\n", s.IndexPath, s.Sources[config.KeyIndexPath])
			outputHuman("export_format: %s (%s)\n", s.ExportFormat, s.Sources[config.KeyExportFormat])
			return nil
		}
		return outputJSON(s)
	}

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	key := normalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "unknown configuration key: %s", args[0])
		}
		if humanOutput {
			fmt.Println(value)
			return nil
		}
		return outputJSON(map[string]string{key: value})
	}

	// Two args: set value
	value := args[1]
	if key == config.KeyFilePath || key == config.KeyIndexPath {
		value = config.ExpandPath(value)
	}
	updated := *cfg
	if err := updated.Set(key, value); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			exitWithError(ExitError, "unknown configuration key: %s", args[0])
		}
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := config.SaveGlobalConfig(&updated); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		outputHuman("Set %s = %s\n", key, value)
		return nil
	}
	return outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
}

// normalizeKey accepts both file-path and file_path spellings.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}
