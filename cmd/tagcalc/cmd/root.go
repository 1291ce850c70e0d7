// Package cmd contains all CLI commands for tagcalc.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/f3rmion/tagcalc/internal/catalog"
	"github.com/f3rmion/tagcalc/internal/config"
	"github.com/f3rmion/tagcalc/internal/logger"
	"github.com/f3rmion/tagcalc/internal/suggest"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tagcalc",
	Short: "Build arithmetic from searchable tags",
	Long: `tagcalc is a calculator whose operands are tags.

Type to search a tag catalog, pick suggestions to add them as tags, and
type + - * / % ^ ( ) to insert operators. The value of the resulting
expression is shown as you go.

Suggestions come from an HTTP autocomplete API (source: remote) or from
a local sqlite catalog (source: local).

Running 'tagcalc' without arguments launches the interactive TUI.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config directory (default is $HOME/.config/tagcalc)")
	flags.Bool("verbose", false, "log at debug level")
	flags.String("base-url", "", "autocomplete API root")
	flags.String("source", "", `suggestion source: "remote" or "local"`)
	flags.String("catalog", "", "sqlite catalog path")
	flags.Duration("timeout", 0, "per-lookup HTTP timeout")
	flags.Duration("debounce", 0, "delay before a lookup fires")
	flags.String("log-file", "", "log file for the TUI")

	for key, flag := range map[string]string{
		"verbose":      "verbose",
		"base_url":     "base-url",
		"source":       "source",
		"catalog_path": "catalog",
		"timeout":      "timeout",
		"debounce":     "debounce",
		"log_file":     "log-file",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// initConfig reads in ENV variables and resolves the config directory.
func initConfig() {
	if cfgFile != "" {
		viper.Set("config_dir", cfgFile)
	} else {
		dir, err := config.GetConfigDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}
		viper.Set("config_dir", dir)
	}

	viper.SetEnvPrefix("TAGCALC")
	viper.AutomaticEnv()
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	return viper.GetString("config_dir")
}

// loadConfig reads config.yaml and applies flag and environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigDir())
	if err != nil {
		return nil, err
	}

	config.ApplyViper(cfg, viper.GetViper())
	if viper.GetBool("verbose") {
		cfg.LogLevel = -1
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupLogger installs the global logger writing to w, or to cfg.LogFile
// when w is nil, and returns a context carrying it.
func setupLogger(cfg *config.Config, w io.Writer) (context.Context, *logr.Logger, error) {
	opts := logger.Options{Level: cfg.LogLevel, Writer: w}
	if w == nil {
		opts.File = cfg.LogFile
	}

	log, err := logger.Setup(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up logger: %w", err)
	}
	return logger.WithLogger(context.Background(), log), log, nil
}

// openSource returns the configured suggestion source. The catalog is
// opened whenever withCatalog is set or the source needs it; callers close it.
func openSource(cfg *config.Config, withCatalog bool) (suggest.Source, *catalog.Store, error) {
	var store *catalog.Store
	if withCatalog || cfg.Source == config.SourceLocal {
		var err error
		store, err = catalog.Open(cfg.CatalogPath)
		if err != nil {
			return nil, nil, err
		}
	}

	if cfg.Source == config.SourceLocal {
		return suggest.CatalogSource{Store: store, Limit: cfg.MaxSuggestions}, store, nil
	}
	return suggest.NewClient(cfg.BaseURL, cfg.Timeout), store, nil
}

// lookupTimeout bounds one-shot CLI lookups when no HTTP timeout applies.
const lookupTimeout = 30 * time.Second
