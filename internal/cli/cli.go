//-------------------------------------------------------------------------
//
// pgEdge Warehouse Data Generator
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-wmsgen.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-wmsgen/internal/config"
	"github.com/pgEdge/pgedge-wmsgen/internal/logging"
	"github.com/pgEdge/pgedge-wmsgen/internal/textgen"
	"github.com/pgEdge/pgedge-wmsgen/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string
	logFile    string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-wmsgen",
		Short: "Warehouse operations dataset generator and loader",
		Long: `pgedge-wmsgen generates a synthetic but internally consistent
warehouse-operations dataset (vehicles, suppliers, customers, employees,
products and ten operational logs) and loads it into PostgreSQL or SQLite
with idempotent, foreign-key ordered upserts.

Generated data is written as one CSV file per table, so it can be
inspected or edited before loading, or loaded straight from memory
with 'init'.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-wmsgen.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"load target: PostgreSQL connection string or sqlite://path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"also append JSON log lines to this file")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tablesCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	// Reinitialize logger with config
	return logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
		File:   cfg.LogFile,
	})
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// newNameService builds the cached name service from the textgen section.
func newNameService() (*textgen.Service, error) {
	gen := textgen.NewGenerator(textgen.Config{
		Mode:    cfg.TextGen.Mode,
		BaseURL: cfg.TextGen.BaseURL,
		APIKey:  cfg.TextGen.APIKey,
		Model:   cfg.TextGen.Model,
		Timeout: cfg.TextGen.Timeout(),
		Seed:    cfg.Generate.Seed,
	})

	logging.Info().
		Str("mode", cfg.TextGen.Mode).
		Str("model", gen.Model()).
		Msg("Name generation configured")

	return textgen.NewService(gen, cfg.TextGen.CacheSize)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
