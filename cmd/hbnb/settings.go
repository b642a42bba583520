package main

import (
	"os"

	"github.com/matsen/hbnb/internal/config"
	"github.com/matsen/hbnb/internal/console"
)

// mustResolveSettings returns the effective settings, exits on error.
func mustResolveSettings() *config.Settings {
	s, err := config.Resolve(config.Overrides{FilePath: filePath, IndexPath: indexPath})
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return s
}

// mustOpenConsole loads the snapshot and returns a console over it.
// Load problems are printed as warnings; the console is usable regardless.
func mustOpenConsole() (*console.Console, *config.Settings) {
	s := mustResolveSettings()
	c, report := console.Open(s.FilePath)
	printLoadWarnings(os.Stderr, report.Problems())
	return c, s
}
