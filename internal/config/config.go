// ABOUTME: Pulse configuration: journal location, journal format and colour.
// ABOUTME: Loads and saves JSON in the XDG config dir and opens the journal sink.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/pulse/internal/journal"
)

// Config stores pulse configuration.
type Config struct {
	// LogFile is the append-only journal path. Supports ~ expansion.
	// Defaults to ~/.local/share/pulse/pulse.log.
	LogFile string `json:"log_file,omitempty"`

	// LogFormat selects the journal line format: "logfmt" (default), "text" or "json".
	LogFormat string `json:"log_format,omitempty"`

	// NoColor disables coloured shell output.
	NoColor bool `json:"no_color,omitempty"`
}

// GetLogFile returns the configured journal path with ~ expanded,
// defaulting to the XDG data directory.
func (c *Config) GetLogFile() string {
	if c.LogFile == "" {
		return filepath.Join(DataDir(), "pulse.log")
	}
	return ExpandPath(c.LogFile)
}

// GetLogFormat returns the configured journal format, defaulting to logfmt.
func (c *Config) GetLogFormat() string {
	if c.LogFormat == "" {
		return journal.FormatLogfmt
	}
	return c.LogFormat
}

// OpenJournal opens the journal sink described by the config.
func (c *Config) OpenJournal() (*journal.Journal, error) {
	j, err := journal.Open(c.GetLogFile(), c.GetLogFormat())
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", c.GetLogFile(), err)
	}
	return j, nil
}

// DataDir returns the default data directory following the XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "pulse")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "pulse", "config.json")
}

// Load reads config from the default path.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads config from path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := checkLogFormat(cfg.GetLogFormat()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func checkLogFormat(format string) error {
	switch format {
	case journal.FormatLogfmt, journal.FormatText, journal.FormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown log_format: %q", format)
	}
}

// Save writes config to the default path.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes config to path.
func (c *Config) SaveTo(path string) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
