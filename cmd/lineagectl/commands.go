package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/lineage/internal/config"
	"github.com/gyaneshwarpardhi/lineage/internal/lineage"
	"github.com/gyaneshwarpardhi/lineage/internal/query"
)

// loadForest loads, validates and builds the lineages at path.
func loadForest(path string) (*config.LineageConfig, *lineage.Forest, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}
	f, err := lineage.Build(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, f, nil
}

func validateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a lineages file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, f, err := loadForest(*cfgPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d lineages, %d vampires\n", f.Len(), f.NodeCount())
			return nil
		},
	}
}

func treeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [lineage...]",
		Short: "Print lineages as trees",
		Long:  `Print each lineage as a tree, offspring in creation order. With no arguments every enabled lineage is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, f, err := loadForest(*cfgPath)
			if err != nil {
				return err
			}
			ids := args
			if len(ids) == 0 {
				ids = f.IDs()
			}
			out := cmd.OutOrStdout()
			for _, id := range ids {
				root, ok := f.Root(id)
				if !ok {
					return fmt.Errorf("%w %q", query.ErrUnknownLineage, id)
				}
				fmt.Fprintf(out, "[%s]\n", id)
				printTree(out, root, "", true, true)
			}
			return nil
		},
	}
}

func printTree(w io.Writer, v *lineage.Vampire, prefix string, last, root bool) {
	switch {
	case root:
		fmt.Fprintf(w, "%s\n", v)
	case last:
		fmt.Fprintf(w, "%s└── %s\n", prefix, v)
		prefix += "    "
	default:
		fmt.Fprintf(w, "%s├── %s\n", prefix, v)
		prefix += "│   "
	}
	offspring := v.Offspring()
	for i, child := range offspring {
		printTree(w, child, prefix, i == len(offspring)-1, false)
	}
}

func queryCmd(cfgPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "query <lineage> <op> [key=value...]",
		Short: "Run one query against a lineage",
		Long: `Run one query against a lineage. Ops and their arguments:

  find name=X            depth name=X           offspring name=X
  descendants name=X     lineage name=X         senior a=X b=Y
  cca a=X b=Y            filter [after=YEAR] [from=X]`,
		Example: `  lineagectl query ansel cca a=Sarah b=Andrew
  lineagectl query ansel filter after=1900 --json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, f, err := loadForest(*cfgPath)
			if err != nil {
				return err
			}
			qargs, err := parseArgs(args[2:])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			reg := query.NewRegistry()
			query.RegisterBuiltins(reg, cfg.Engine.Threshold())
			eng := query.NewEngine(ctx, f, reg, config.EngineConf{
				QueryWorkers:   1,
				QueueDepth:     1,
				QueryTimeoutMs: cfg.Engine.QueryTimeoutMs,
				YearThreshold:  cfg.Engine.YearThreshold,
			})
			defer eng.Shutdown()

			// Process rather than Execute so the configured query timeout applies.
			res, err := eng.Process(ctx, &query.Request{Lineage: args[0], Op: args[1], Args: qargs})
			if err != nil {
				return err
			}
			if res.Err() != nil {
				return res.Err()
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintln(out, formatValue(res.Value))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	return cmd
}

func parseArgs(pairs []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q: expected key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case query.VampireView:
		return fmt.Sprintf("%s (%d), generation %d", val.Name, val.YearConverted, val.Generation)
	case []query.VampireView:
		lines := make([]string, len(val))
		for i, vv := range val {
			lines[i] = fmt.Sprintf("%s (%d)", vv.Name, vv.YearConverted)
		}
		return strings.Join(lines, "\n")
	case []string:
		return strings.Join(val, " → ")
	default:
		return fmt.Sprint(val)
	}
}
