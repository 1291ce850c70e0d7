// Package config handles loading and saving user configuration for tagcalc.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file inside the config directory.
const FileName = "config.yaml"

// Suggestion sources.
const (
	SourceRemote = "remote" // HTTP autocomplete API
	SourceLocal  = "local"  // sqlite catalog on disk
)

// DefaultBaseURL is the mock autocomplete API the widget was built against.
const DefaultBaseURL = "https://652f91320b8d8ddac0b2b62b.mockapi.io"

// Config holds all user configuration for tagcalc.
type Config struct {
	BaseURL        string        `yaml:"base_url"`        // Lookup API root; /autocomplete is appended
	Timeout        time.Duration `yaml:"timeout"`         // Per-lookup HTTP timeout
	Debounce       time.Duration `yaml:"debounce"`        // Delay before a lookup fires; 0 = every keystroke
	MaxSuggestions int           `yaml:"max_suggestions"` // Dropdown rows shown at once
	Source         string        `yaml:"source"`          // "remote" or "local"
	CatalogPath    string        `yaml:"catalog_path"`    // sqlite file for the local catalog
	Listen         string        `yaml:"listen"`          // Address for `tagcalc serve`
	LogFile        string        `yaml:"log_file"`        // Where the TUI writes logs; "" disables
	LogLevel       int8          `yaml:"log_level"`       // zap level: -1 debug, 0 info, 1 warn, 2 error
	BigResult      bool          `yaml:"big_result"`      // Render the result in block digits
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		Timeout:        10 * time.Second,
		MaxSuggestions: 8,
		Source:         SourceRemote,
		Listen:         "127.0.0.1:8080",
		BigResult:      true,
	}
}

// DefaultFor returns the defaults with the catalog and log file placed in dir.
func DefaultFor(dir string) *Config {
	cfg := Default()
	cfg.CatalogPath = filepath.Join(dir, "catalog.db")
	cfg.LogFile = filepath.Join(dir, "tagcalc.log")
	return cfg
}

// Load reads <dir>/config.yaml over the defaults. A missing file is not an error.
func Load(dir string) (*Config, error) {
	cfg := DefaultFor(dir)

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to <dir>/config.yaml.
func Save(dir string, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ApplyViper overlays any keys set in v (flags, TAGCALC_* env) onto cfg.
func ApplyViper(cfg *Config, v *viper.Viper) {
	if v.IsSet("base_url") {
		cfg.BaseURL = v.GetString("base_url")
	}
	if v.IsSet("timeout") {
		cfg.Timeout = v.GetDuration("timeout")
	}
	if v.IsSet("debounce") {
		cfg.Debounce = v.GetDuration("debounce")
	}
	if v.IsSet("max_suggestions") {
		cfg.MaxSuggestions = v.GetInt("max_suggestions")
	}
	if v.IsSet("source") {
		cfg.Source = v.GetString("source")
	}
	if v.IsSet("catalog_path") {
		cfg.CatalogPath = v.GetString("catalog_path")
	}
	if v.IsSet("listen") {
		cfg.Listen = v.GetString("listen")
	}
	if v.IsSet("log_file") {
		cfg.LogFile = v.GetString("log_file")
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = int8(v.GetInt("log_level"))
	}
	if v.IsSet("big_result") {
		cfg.BigResult = v.GetBool("big_result")
	}
}

// Validate checks that cfg can be used.
func (c *Config) Validate() error {
	var errs []error

	switch c.Source {
	case SourceRemote:
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL))
		}
	case SourceLocal:
		if c.CatalogPath == "" {
			errs = append(errs, errors.New("catalog_path is required for the local source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source %q (want %q or %q)", c.Source, SourceRemote, SourceLocal))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %s", c.Debounce))
	}
	if c.MaxSuggestions <= 0 {
		errs = append(errs, fmt.Errorf("max_suggestions must be positive, got %d", c.MaxSuggestions))
	}

	return errors.Join(errs...)
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tagcalc"), nil
}

// EnsureConfigDir creates dir if it doesn't exist.
func EnsureConfigDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
