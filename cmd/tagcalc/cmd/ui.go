package cmd

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/f3rmion/tagcalc/internal/config"
	"github.com/f3rmion/tagcalc/internal/logger"
	"github.com/f3rmion/tagcalc/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"i", "interactive"},
	Short:   "Launch the interactive TUI",
	Long: `Launch the tag calculator in the terminal.

Controls:
  type        Search tags
  + - * / % ^ ( )
              Insert an operator
  ↑/↓ enter   Pick a suggestion (or click it)
  ←           Select tags; backspace removes one (or click ×)
  ctrl+y      Copy the result
  F1          Help
  ctrl+c      Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

// runTUI launches the TUI application.
func runTUI(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("the TUI needs a terminal; use 'tagcalc eval' in scripts")
	}

	configDir := getConfigDir()
	if err := config.EnsureConfigDir(configDir); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, log, err := setupLogger(cfg, nil)
	if err != nil {
		return err
	}
	defer logger.Sync()

	source, store, err := openSource(cfg, true)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Info("starting ui", "source", cfg.Source, "base_url", cfg.BaseURL)

	p := tea.NewProgram(
		tui.NewApp(tui.Options{
			Config:    cfg,
			ConfigDir: configDir,
			Source:    source,
			Catalog:   store,
			Context:   ctx,
		}),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
