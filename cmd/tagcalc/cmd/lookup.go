package cmd

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/f3rmion/tagcalc/internal/calc"
	"github.com/f3rmion/tagcalc/internal/logger"
	"github.com/f3rmion/tagcalc/internal/tag"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <query>",
	Short: "Show the suggestions for a query",
	Long: `Query the configured suggestion source and print the matches.

Example:
  tagcalc lookup fi
  tagcalc lookup --source local "grand total"`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().Int("limit", 0, "show at most this many rows (0 = all)")
}

func runLookup(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, _, err := setupLogger(cfg, nil)
	if err != nil {
		return err
	}
	defer logger.Sync()

	source, store, err := openSource(cfg, false)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	items, err := source.Lookup(ctx, args[0])
	if err != nil {
		return fmt.Errorf("looking up %q: %w", args[0], err)
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	if len(items) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No tags match %q\n", args[0])
		return nil
	}

	renderItems(cmd, items)
	return nil
}

// renderItems prints items as a table.
func renderItems(cmd *cobra.Command, items []tag.Item) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Name", "Value", "Category", "ID"})
	table.SetBorder(true)
	table.SetAutoWrapText(false)
	for _, it := range items {
		table.Append([]string{it.Name, calc.FormatNumber(it.Value), it.Category, it.ID})
	}
	table.Render()
}
