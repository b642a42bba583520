package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables that override the global config.
const (
	EnvFilePath     = "HBNB_FILE_PATH"
	EnvIndexPath    = "HBNB_INDEX_PATH"
	EnvExportFormat = "HBNB_EXPORT_FORMAT"
)

const (
	DefaultFilePath     = "file.json"
	DefaultIndexPath    = "file.db"
	DefaultExportFormat = "json"
)

// ValidExportFormats lists the supported export_format values.
var ValidExportFormats = []string{"json", "yaml", "msgpack"}

// Source names where a setting came from.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "env"
	SourceConfig  Source = "config"
	SourceDefault Source = "default"
)

// Settings are the effective paths and formats for one invocation.
type Settings struct {
	FilePath     string `json:"file_path"`
	IndexPath    string `json:"index_path"`
	ExportFormat string `json:"export_format"`

	Sources map[string]Source `json:"sources"`
}

// Overrides holds values given on the command line. Empty means unset.
type Overrides struct {
	FilePath  string
	IndexPath string
}

// LoadEnv reads a .env file from the working directory if one exists.
// Variables already set in the environment win.
func LoadEnv() {
	_ = godotenv.Load()
}

// Resolve computes the effective settings. Precedence is flag, then
// environment, then global config, then the built-in default.
func Resolve(o Overrides) (*Settings, error) {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return nil, err
	}

	s := &Settings{Sources: make(map[string]Source)}
	s.FilePath = s.pick(KeyFilePath, o.FilePath, EnvFilePath, cfg.FilePath, DefaultFilePath)
	s.IndexPath = s.pick(KeyIndexPath, o.IndexPath, EnvIndexPath, cfg.IndexPath, DefaultIndexPath)
	s.ExportFormat = s.pick(KeyExportFormat, "", EnvExportFormat, cfg.ExportFormat, DefaultExportFormat)

	if err := ValidateExportFormat(s.ExportFormat); err != nil {
		return nil, fmt.Errorf("%s from %s: %w", KeyExportFormat, s.Sources[KeyExportFormat], err)
	}
	return s, nil
}

func (s *Settings) pick(key, flag, env, cfg, def string) string {
	if flag != "" {
		s.Sources[key] = SourceFlag
		return ExpandPath(flag)
	}
	if v := os.Getenv(env); v != "" {
		s.Sources[key] = SourceEnv
		return ExpandPath(v)
	}
	if cfg != "" {
		s.Sources[key] = SourceConfig
		return cfg
	}
	s.Sources[key] = SourceDefault
	return def
}

// ValidateExportFormat checks that format is a supported export format.
func ValidateExportFormat(format string) error {
	if format == "" {
		return nil // Empty defaults to json
	}
	for _, valid := range ValidExportFormats {
		if format == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid export_format: %s (valid: %v)", format, ValidExportFormats)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
