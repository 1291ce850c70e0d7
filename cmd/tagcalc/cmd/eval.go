package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/f3rmion/tagcalc/internal/calc"
	"github.com/f3rmion/tagcalc/internal/catalog"
	"github.com/f3rmion/tagcalc/internal/logger"
	"github.com/f3rmion/tagcalc/internal/server"
	"github.com/f3rmion/tagcalc/internal/suggest"
	"github.com/f3rmion/tagcalc/internal/tag"
)

var evalCmd = &cobra.Command{
	Use:   "eval <tag>...",
	Short: "Evaluate a tag sequence",
	Long: `Evaluate a sequence of tags the way the TUI does.

Each argument is one tag:
  + - * / % ^ ( )   an operator
  42, 1.5e3         a number
  name=value        a named number
  anything else     looked up in the configured source; the first
                    suggestion with that exact name (or else the first
                    suggestion) is used

Adjacent values concatenate, as in the TUI:

  tagcalc eval 2 3          # 23
  tagcalc eval 5 + 3        # 8
  tagcalc eval ten / zero   # (blank: not finite)

Flags go before the first tag; later arguments such as -3 are tags.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().Bool("json", false, "print the result as JSON")
	evalCmd.Flags().Bool("explain", false, "print the expression text along with the value")
	// Everything after the first tag is a tag, so "-3" is a number.
	evalCmd.Flags().SetInterspersed(false)
}

func runEval(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	explain, _ := cmd.Flags().GetBool("explain")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, _, err := setupLogger(cfg, nil)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var (
		source suggest.Source
		store  *catalog.Store
	)
	defer func() {
		if store != nil {
			store.Close()
		}
	}()
	resolve := func(ctx context.Context, name string) (tag.Item, error) {
		if source == nil {
			var err error
			if source, store, err = openSource(cfg, false); err != nil {
				return tag.Item{}, err
			}
		}
		return resolveTag(ctx, source, name)
	}

	items, err := parseTags(ctx, args, resolve)
	if err != nil {
		return err
	}

	res := calc.Run(items)
	out := cmd.OutOrStdout()

	switch {
	case asJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(server.NewEvaluateResponse(res))
	case explain:
		fmt.Fprintf(out, "expression: %q\n", res.Built)
		if res.Recovered {
			fmt.Fprintf(out, "retried:    %q\n", res.Expression)
		}
		if res.Failed() {
			fmt.Fprintf(out, "error:      %v\n", res.Err)
		}
		fmt.Fprintf(out, "value:      %s\n", calc.FormatNumber(res.Value))
	default:
		fmt.Fprintln(out, calc.Format(res.Value))
	}
	return nil
}

type resolveFunc func(ctx context.Context, name string) (tag.Item, error)

// parseTags turns command-line arguments into tags. Names that are neither
// operators nor numbers go through resolve.
func parseTags(ctx context.Context, args []string, resolve resolveFunc) ([]tag.Item, error) {
	items := make([]tag.Item, 0, len(args))
	for _, arg := range args {
		it, err := parseTag(ctx, arg, resolve)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func parseTag(ctx context.Context, arg string, resolve resolveFunc) (tag.Item, error) {
	if tag.IsSymbol(arg) {
		return tag.Symbol(arg), nil
	}

	if name, value, ok := strings.Cut(arg, "="); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return tag.Item{}, fmt.Errorf("tag %q: %q is not a number", name, value)
		}
		return tag.Item{Name: strings.TrimSpace(name), Value: v}, nil
	}

	if v, err := strconv.ParseFloat(arg, 64); err == nil {
		return tag.Item{Name: arg, Value: v}, nil
	}

	if strings.TrimSpace(arg) == "" {
		return tag.Item{}, fmt.Errorf("empty tag")
	}
	return resolve(ctx, arg)
}

// resolveTag looks name up and prefers an exact, case-insensitive match.
func resolveTag(ctx context.Context, source suggest.Source, name string) (tag.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	items, err := source.Lookup(ctx, name)
	if err != nil {
		return tag.Item{}, fmt.Errorf("looking up %q: %w", name, err)
	}
	if len(items) == 0 {
		return tag.Item{}, fmt.Errorf("no tag matches %q", name)
	}
	for _, it := range items {
		if strings.EqualFold(it.Name, name) {
			return it, nil
		}
	}
	return items[0], nil
}
