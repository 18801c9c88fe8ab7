//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-scetl.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-scetl/internal/config"
	"github.com/pgEdge/pgedge-scetl/internal/logging"
	"github.com/pgEdge/pgedge-scetl/pkg/version"
)

var (
	// Global flags
	cfgFile  string
	driver   string
	dsn      string
	logLevel string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-scetl",
		Short: "Supply-chain star-schema ETL",
		Long: `pgedge-scetl reads a DataCo-style supply-chain order export, normalizes
it into a star-schema warehouse (customers, products and locations plus an
order line item fact table) and reports on the loaded data.

The warehouse is SQLite by default (database/supply_chain_dw.db) or
PostgreSQL with --driver postgres. Every load replaces the warehouse
contents in a single transaction.

Environment:
  SCETL_SOURCE  source file path (overridden by --source)
  SCETL_DSN     warehouse DSN (overridden by --dsn)`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	defer logging.Close()
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-scetl.yaml)")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "",
		"warehouse driver (sqlite, postgres)")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "",
		"warehouse DSN: a file path for sqlite or a connection string for postgres")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(schemaCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if driver != "" {
		cfg.Warehouse.Driver = driver
	}
	if dsn != "" {
		cfg.Warehouse.DSN = dsn
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.File = cfg.LogFile
	logging.Init(logCfg)

	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
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

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
