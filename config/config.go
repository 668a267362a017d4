// Loads the icondup YAML configuration and fills in its defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benoitkugler/icondup/report"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Library LibraryConfig `yaml:"library"`
	Report  ReportConfig  `yaml:"report"`
	Widget  WidgetConfig  `yaml:"widget"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// LibraryConfig holds the icon library settings.
type LibraryConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
	Watch       bool     `yaml:"watch"`
	ThemeIcons  bool     `yaml:"theme_icons"`
}

// RecursiveOrDefault returns whether to scan recursively; defaults to true when unset.
func (l *LibraryConfig) RecursiveOrDefault() bool {
	if l.Recursive != nil {
		return *l.Recursive
	}
	return true
}

// ReportConfig holds the classification thresholds and the number of
// results shown.
type ReportConfig struct {
	report.Thresholds `yaml:",inline"`
	Limit             int `yaml:"limit"`
}

// WidgetConfig holds the offscreen rendering settings.
type WidgetConfig struct {
	// FrameInterval is the delay between two paints. Zero paints immediately.
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// DefaultPath returns the path of the user configuration file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "icondup", "config.yaml")
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	for i := range cfg.Library.Directories {
		cfg.Library.Directories[i] = expandPath(cfg.Library.Directories[i], configDir)
	}

	return &cfg, nil
}

// LoadOrDefault is like Load, but returns the default configuration
// when `path` is the default path and the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) && path == DefaultPath() {
		return Default(), nil
	}
	return cfg, err
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// "~/" refers to the home directory; other relative paths are kept as is.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
