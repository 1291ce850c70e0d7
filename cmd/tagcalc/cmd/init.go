package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/f3rmion/tagcalc/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize tagcalc configuration",
	Long: `Initialize tagcalc configuration in your config directory.

This creates:
  - config.yaml    (lookup source, timeouts, logging)
  - catalog.yaml   (sample items for 'tagcalc catalog import')`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "overwrite existing configuration")
}

const sampleCatalog = `# Import with: tagcalc catalog import catalog.yaml
items:
  - name: zero
    value: 0
    category: number
  - name: one
    value: 1
    category: number
  - name: two
    value: 2
    category: number
  - name: ten
    value: 10
    category: number
  - name: dozen
    value: 12
    category: number
  - name: hundred
    value: 100
    category: number
  - name: pi
    value: 3.141592653589793
    category: constant
  - name: e
    value: 2.718281828459045
    category: constant
`

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	configDir := getConfigDir()
	out := cmd.OutOrStdout()

	configPath := filepath.Join(configDir, config.FileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", configPath)
	}

	if err := config.EnsureConfigDir(configDir); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	fmt.Fprintf(out, "Initializing tagcalc configuration in %s\n\n", configDir)

	cfg, err := config.Load(configDir)
	if err != nil && !force {
		return err
	}
	if cfg == nil {
		cfg = config.DefaultFor(configDir)
	}
	if err := config.Save(configDir, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "  Created %s\n", config.FileName)

	if err := os.WriteFile(filepath.Join(configDir, "catalog.yaml"), []byte(sampleCatalog), 0644); err != nil {
		return fmt.Errorf("writing sample catalog: %w", err)
	}
	fmt.Fprintln(out, "  Created catalog.yaml")

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration initialized!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  1. Run 'tagcalc catalog import %s' to fill the local catalog\n", filepath.Join(configDir, "catalog.yaml"))
	fmt.Fprintln(out, "  2. Set 'source: local' in config.yaml, or run 'tagcalc serve'")
	fmt.Fprintln(out, "  3. Run 'tagcalc' to start calculating")

	return nil
}
