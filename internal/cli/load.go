//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-scetl/internal/etl"
	"github.com/pgEdge/pgedge-scetl/internal/logging"
	"github.com/pgEdge/pgedge-scetl/internal/source"
	"github.com/pgEdge/pgedge-scetl/internal/warehouse"
	"github.com/pgEdge/pgedge-scetl/pkg/version"
)

var (
	loadSource       string
	loadDelimiter    string
	loadInvalidBytes string
	loadBatchSize    int
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Run the ETL and replace the warehouse contents",
	Long: `Read the source file, normalize every row into the star schema and load
the result into the warehouse in one transaction. Existing warehouse tables
are dropped and recreated.

Rows with unparseable values or a repeated order item id are dropped and
counted; the run continues. A missing required column aborts before any row
is read, and a constraint violation rolls the whole load back.

Example:
  pgedge-scetl load --source data/DataCoSupplyChainDataset.csv
  pgedge-scetl load --driver postgres --dsn postgres://localhost/dw`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadSource, "source", "",
		"source file path (default: data/DataCoSupplyChainDataset.csv)")
	loadCmd.Flags().StringVar(&loadDelimiter, "delimiter", "",
		"source field delimiter (default: ,)")
	loadCmd.Flags().StringVar(&loadInvalidBytes, "invalid-bytes", "",
		"invalid UTF-8 handling: latin1, replace, drop (default: latin1)")
	loadCmd.Flags().IntVar(&loadBatchSize, "batch-size", 0,
		"rows per insert batch (default: 1000)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if loadSource != "" {
		cfg.Source.Path = loadSource
	}
	if loadDelimiter != "" {
		cfg.Source.Delimiter = loadDelimiter
	}
	if loadInvalidBytes != "" {
		cfg.Source.InvalidBytes = loadInvalidBytes
	}
	if loadBatchSize > 0 {
		cfg.Warehouse.BatchSize = loadBatchSize
	}

	// Validate configuration
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	policy, err := source.ParsePolicy(cfg.Source.InvalidBytes)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	runID := uuid.NewString()
	logging.With("run_id", runID)

	logging.Info().
		Str("source", cfg.Source.Path).
		Str("driver", cfg.Warehouse.Driver).
		Str("invalid_bytes", string(policy)).
		Int("batch_size", cfg.Warehouse.BatchSize).
		Msg("Starting load")

	reader, err := source.Open(cfg.Source.Path, source.Options{
		Delimiter:    cfg.DelimiterRune(),
		InvalidBytes: policy,
	})
	if err != nil {
		return err
	}
	defer reader.Close()

	wh, err := warehouse.Open(ctx, cfg.Warehouse.Driver, cfg.WarehouseDSN())
	if err != nil {
		return fmt.Errorf("failed to open warehouse: %w", err)
	}
	defer wh.Close()

	pipeline := etl.New(wh, etl.Config{
		RunID:      runID,
		SourcePath: cfg.Source.Path,
		Version:    version.Short(),
		BatchSize:  cfg.Warehouse.BatchSize,
	})

	summary, err := pipeline.Run(ctx, reader)
	return reportLoad(cmd.OutOrStdout(), summary, err)
}

// reportLoad logs the run summary, which a failed load still carries when
// the transform finished, and renders it on success.
func reportLoad(w io.Writer, summary *etl.Summary, err error) error {
	if summary != nil {
		summary.Log()
	}
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	summary.Render(w)
	return nil
}
