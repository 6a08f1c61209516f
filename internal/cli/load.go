package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-wmsgen/internal/db"
	"github.com/pgEdge/pgedge-wmsgen/internal/load"
	"github.com/pgEdge/pgedge-wmsgen/internal/logging"
	"github.com/pgEdge/pgedge-wmsgen/internal/warehouse"
)

var (
	loadInputDir     string
	loadBatchSize    int
	loadCreateSchema bool
	loadNoSchema     bool
	loadDropExisting bool
	loadStrict       bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load CSV files into the target database",
	Long: `Load the per-table CSV files from the input directory into the
target database. Tables are loaded parent first; each row is inserted or,
when its key already exists, updated, so loading the same files twice
leaves the database unchanged.

A table whose CSV file is missing or empty is skipped. A table that fails
to load is rolled back and reported, and the remaining tables are still
loaded. With --strict any failed table makes the command exit non-zero.

Example:
  pgedge-wmsgen load --input-dir data --connection "postgres://..."
  pgedge-wmsgen load --input-dir data --connection sqlite://wms.db`,
	RunE: runLoad,
}

func init() {
	addLoadFlags(loadCmd)
	loadCmd.Flags().StringVar(&loadInputDir, "input-dir", "",
		"directory holding the CSV files (default: data)")
}

// addLoadFlags registers the flags shared by load and init.
func addLoadFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&loadBatchSize, "batch-size", 0,
		"maximum rows per insert statement (default: 1000)")
	cmd.Flags().BoolVar(&loadCreateSchema, "create-schema", false,
		"create missing tables before loading (default: true)")
	cmd.Flags().BoolVar(&loadNoSchema, "no-create-schema", false,
		"do not create missing tables")
	cmd.Flags().BoolVar(&loadDropExisting, "drop-existing", false,
		"drop all warehouse tables before loading")
	cmd.Flags().BoolVar(&loadStrict, "strict", false,
		"exit non-zero when any table fails to load")
}

// applyLoadFlags copies load flags into the config.
func applyLoadFlags() {
	if loadBatchSize > 0 {
		cfg.Load.BatchSize = loadBatchSize
	}
	if loadCreateSchema {
		cfg.Load.CreateSchema = true
	}
	if loadNoSchema {
		cfg.Load.CreateSchema = false
	}
	if loadDropExisting {
		cfg.Load.DropExisting = true
	}
	if loadStrict {
		cfg.Load.Strict = true
	}
}

func runLoad(cmd *cobra.Command, args []string) error {
	applyLoadFlags()
	if loadInputDir != "" {
		cfg.Load.InputDir = loadInputDir
	}

	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := openTarget(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	return loadInto(ctx, cmd.OutOrStdout(), store, "load", load.DirSource{Dir: cfg.Load.InputDir})
}

// openTarget connects to the configured target and prepares the schema.
func openTarget(ctx context.Context) (*db.Store, error) {
	store, err := db.Open(ctx, cfg.Connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	defs := warehouse.Schemas()
	if cfg.Load.DropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := db.DropSchema(ctx, store, defs); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to drop schema: %w", err)
		}
		if err := db.DropMetadata(ctx, store); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	if cfg.Load.CreateSchema {
		logging.Info().Msg("Creating schema")
		if err := db.CreateSchema(ctx, store, defs); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return store, nil
}

// loadInto runs the default sequence from source, prints the summary and
// records the run.
func loadInto(ctx context.Context, out io.Writer, store *db.Store, command string, source load.Source) error {
	seq := load.DefaultSequence()
	run := db.NewRunInfo(command, source.String())
	summary := load.NewSequencer(source, load.NewExecutor(store, cfg.Load.BatchSize)).Run(ctx, seq)
	if summary.Err != nil {
		return summary.Err
	}

	printSummary(out, summary)

	run.TablesLoaded = summary.Loaded
	run.TablesFailed = summary.Failed
	run.RowsLoaded = summary.Rows
	if err := db.SaveMetadata(ctx, store, run); err != nil {
		logging.Warn().Err(err).Msg("Failed to save run metadata")
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if cfg.Load.Strict && !summary.OK() {
		return fmt.Errorf("%d of %d tables failed to load", summary.Failed, len(seq))
	}
	return nil
}

// printSummary writes one line per table followed by the totals.
func printSummary(out io.Writer, s load.Summary) {
	ok := color.New(color.FgGreen).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Load summary")
	fmt.Fprintln(out, "------------")
	for _, r := range s.Results {
		switch r.Status {
		case load.StatusLoaded:
			fmt.Fprintf(out, "  %-10s %-34s %8d rows  %s\n", ok(r.Status), r.Entry.Target, r.Rows, r.Duration.Round(time.Millisecond))
		case load.StatusSkipped:
			fmt.Fprintf(out, "  %-10s %-34s %s\n", warn(r.Status), r.Entry.Target, r.Reason)
		case load.StatusFailed:
			fmt.Fprintf(out, "  %-10s %-34s %v\n", bad(r.Status), r.Entry.Target, r.Err)
		}
	}
	fmt.Fprintln(out)

	totals := fmt.Sprintf("%d loaded, %d skipped, %d failed, %d rows in %s",
		s.Loaded, s.Skipped, s.Failed, s.Rows, s.Duration.Round(time.Millisecond))
	if s.OK() {
		fmt.Fprintln(out, ok(totals))
	} else {
		fmt.Fprintln(out, bad(totals))
	}
}
