package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-wmsgen/internal/db"
	"github.com/pgEdge/pgedge-wmsgen/internal/load"
	"github.com/pgEdge/pgedge-wmsgen/internal/warehouse"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last run and the row count of every table",
	RunE:  runStatus,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the warehouse tables in load order",
	Long: `List every warehouse table in the order it is generated and
loaded, with its conflict key and the tables it references.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seq := load.DefaultSequence()
		if err := load.ValidateSequence(seq); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-3s %-34s %-16s %s\n", "#", "TABLE", "KEY", "REFERENCES")
		for i, e := range seq {
			def, _ := warehouse.Schema(e.Target)
			refs := "-"
			if deps := def.Dependencies(); len(deps) > 0 {
				refs = strings.Join(deps, ", ")
			}
			fmt.Fprintf(out, "%-3d %-34s %-16s %s\n", i+1, e.Target, e.ConflictKey, refs)
		}
		return nil
	},
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	ctx := context.Background()
	store, err := db.Open(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	header := color.New(color.Bold).SprintFunc()

	fmt.Fprintln(out, header("Last run"))
	exists, err := db.MetadataExists(ctx, store)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintln(out, "  no runs recorded")
	} else {
		meta, err := db.GetAllMetadata(ctx, store)
		if err != nil {
			return fmt.Errorf("failed to read metadata: %w", err)
		}
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %-14s %s\n", k, meta[k])
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, header("Tables"))
	missing := color.New(color.FgYellow).SprintFunc()
	for _, name := range warehouse.TableNames() {
		ok, err := db.TableExists(ctx, store, name)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "  %-34s %s\n", name, missing("missing"))
			continue
		}
		n, err := db.CountRows(ctx, store, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-34s %d\n", name, n)
	}
	return nil
}
