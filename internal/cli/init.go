package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-wmsgen/internal/load"
	"github.com/pgEdge/pgedge-wmsgen/internal/logging"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schema, generate the dataset and load it",
	Long: `Initialize a database in one step: create the warehouse schema,
generate the dataset and load it straight from memory. No CSV files are
written; use 'generate' followed by 'load' to keep them.

Example:
  pgedge-wmsgen init --connection "postgres://..." --seed 42
  pgedge-wmsgen init --connection sqlite://wms.db --drop-existing`,
	RunE: runInit,
}

func init() {
	addLoadFlags(initCmd)
	initCmd.Flags().Uint64Var(&genSeed, "seed", 0,
		"random seed for a reproducible dataset (0 = random)")
	initCmd.Flags().StringVar(&genStartDate, "start-date", "",
		"first event date (YYYY-MM-DD)")
	initCmd.Flags().StringVar(&genEndDate, "end-date", "",
		"last event date (YYYY-MM-DD)")
}

func runInit(cmd *cobra.Command, args []string) error {
	applyGenerateFlags()
	applyLoadFlags()

	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	// Connect before generating so a bad target fails fast
	store, err := openTarget(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	ds, err := buildDataset(ctx)
	if err != nil {
		return err
	}

	if err := loadInto(ctx, cmd.OutOrStdout(), store, "init", load.DatasetSource{Dataset: ds}); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	logging.Info().Msg("Database initialization complete")
	return nil
}
