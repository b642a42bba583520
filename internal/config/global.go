// Package config handles the global configuration file and the resolution
// of snapshot and index paths from flags, environment and config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/hbnb/config.yml.
type GlobalConfig struct {
	FilePath     string `yaml:"file_path,omitempty"`
	IndexPath    string `yaml:"index_path,omitempty"`
	ExportFormat string `yaml:"export_format,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "hbnb"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Config keys accepted by Get and Set.
const (
	KeyFilePath     = "file_path"
	KeyIndexPath    = "index_path"
	KeyExportFormat = "export_format"
)

// ErrUnknownKey is returned for a config key that does not exist.
var ErrUnknownKey = errors.New("unknown config key")

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/hbnb/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	cfg.FilePath = ExpandPath(cfg.FilePath)
	cfg.IndexPath = ExpandPath(cfg.IndexPath)

	globalConfigCache = &cfg
	return &cfg, nil
}

// SaveGlobalConfig writes cfg to the global config file and refreshes the
// cache.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	path := GlobalConfigPath()
	if path == "" {
		return errors.New("cannot determine config directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding global config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}

	c := *cfg
	globalConfigCache = &c
	return nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// Keys returns the config keys in sorted order.
func Keys() []string {
	keys := []string{KeyFilePath, KeyIndexPath, KeyExportFormat}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key.
func (c *GlobalConfig) Get(key string) (string, error) {
	switch key {
	case KeyFilePath:
		return c.FilePath, nil
	case KeyIndexPath:
		return c.IndexPath, nil
	case KeyExportFormat:
		return c.ExportFormat, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set validates and stores value under key.
func (c *GlobalConfig) Set(key, value string) error {
	switch key {
	case KeyFilePath:
		c.FilePath = value
	case KeyIndexPath:
		c.IndexPath = value
	case KeyExportFormat:
		if err := ValidateExportFormat(value); err != nil {
			return err
		}
		c.ExportFormat = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}
