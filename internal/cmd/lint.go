package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/dexls/dexls/internal/config"
	"github.com/dexls/dexls/internal/lsp"
	"github.com/dexls/dexls/internal/metadata"
	"github.com/dexls/dexls/lint"
)

// Lint checks a query from a file argument or stdin and prints the
// findings. The exit code is non-zero when any error-level finding
// exists.
func Lint(c *cli.Context) error {
	sql, err := readInput(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	store, err := loadStore(cfg)
	if err != nil {
		return err
	}

	ctx := lint.NewContext(sql)
	if store != nil {
		ctx.TableFields = store.TableFields()
	}
	rules := lint.AllRules()
	if cfg != nil {
		rules = lint.Without(rules, cfg.DisabledRules)
	}
	diags := lint.Run(ctx, rules)

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(diags); err != nil {
			return err
		}
	} else if err := printDiagnostics(os.Stdout, sql, diags); err != nil {
		return err
	}

	for _, d := range diags {
		if d.Severity == lint.Error {
			return cli.Exit("", 1)
		}
	}
	return nil
}

func printDiagnostics(w io.Writer, sql string, diags []lint.Diagnostic) error {
	if len(diags) == 0 {
		fmt.Fprintln(w, "no issues found")
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("SEVERITY", "LINE", "COL", "MESSAGE")
	for _, d := range diags {
		pos := lsp.PositionFrom(sql, d.Start)
		err := table.Append(
			d.Severity.String(),
			fmt.Sprint(pos.Line+1),
			fmt.Sprint(pos.Character+1),
			d.Message,
		)
		if err != nil {
			return err
		}
	}
	return table.Render()
}

// loadStore builds the table catalog when the config names one. A
// missing config is fine, the metadata rules just stay quiet.
func loadStore(cfg *config.Config) (*metadata.Store, error) {
	if cfg == nil {
		return nil, nil
	}
	store := metadata.NewStore()
	switch {
	case cfg.Catalog != "":
		if err := store.LoadYAMLFile(cfg.Catalog); err != nil {
			return nil, err
		}
	case cfg.Snapshot != "":
		if err := store.LoadSnapshot(context.Background(), cfg.Snapshot); err != nil {
			return nil, err
		}
	}
	return store, nil
}
