package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/f3rmion/tagcalc/internal/catalog"
	"github.com/f3rmion/tagcalc/internal/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local tag catalog",
	Long: `Manage the sqlite catalog used by the local source and by 'tagcalc serve'.

Catalog files are YAML:

  items:
    - name: ten
      value: 10
      category: number
    - id: pi
      name: pi
      value: 3.14159`,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.yaml>...",
	Short: "Import items from YAML files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCatalogImport,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog items",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete items by id",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCatalogDelete,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogImportCmd, catalogListCmd, catalogDeleteCmd)
}

// openCatalog loads the config and opens its catalog, creating the config
// directory if needed.
func openCatalog() (*config.Config, *catalog.Store, error) {
	if err := config.EnsureConfigDir(getConfigDir()); err != nil {
		return nil, nil, fmt.Errorf("creating config directory: %w", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	_, store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	total := 0
	for _, path := range args {
		items, err := catalog.LoadYAML(path)
		if err != nil {
			return err
		}
		n, err := store.Upsert(context.Background(), items)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  Imported %d items from %s\n", n, path)
		total += n
	}

	count, err := store.Count(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nCatalog %s now holds %d items (%d imported)\n", store.Path(), count, total)
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	_, store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	items, err := store.All(context.Background())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty. Add items with 'tagcalc catalog import <file.yaml>'")
		return nil
	}

	renderItems(cmd, items)
	return nil
}

func runCatalogDelete(cmd *cobra.Command, args []string) error {
	_, store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	for _, id := range args {
		ok, err := store.Delete(context.Background(), id)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "  No item with id %s\n", id)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  Deleted %s\n", id)
	}
	return nil
}
