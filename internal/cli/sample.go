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
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-scetl/internal/datagen"
)

var (
	sampleOut           string
	sampleRows          int
	sampleSeed          uint64
	sampleDuplicateRate float64
	sampleMalformedRate float64
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate a synthetic source file",
	Long: `Write a synthetic supply-chain export in the DataCo column layout. A
small share of rows repeat an order item id or carry an unparseable price so
the drop accounting of 'load' can be exercised.

Example:
  pgedge-scetl sample --rows 100000 --seed 42
  pgedge-scetl sample --out /tmp/orders.csv --malformed-rate 0`,
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().StringVar(&sampleOut, "out", "",
		"output file (default: the configured source path)")
	sampleCmd.Flags().IntVar(&sampleRows, "rows", 0,
		"number of data rows (default: 10000)")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 0,
		"random seed for reproducible output (default: random)")
	sampleCmd.Flags().Float64Var(&sampleDuplicateRate, "duplicate-rate", -1,
		"share of rows repeating the previous order item id (default: 0.01)")
	sampleCmd.Flags().Float64Var(&sampleMalformedRate, "malformed-rate", -1,
		"share of rows with an unparseable price (default: 0.01)")
}

func runSample(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if sampleOut != "" {
		cfg.Sample.Out = sampleOut
	}
	if sampleRows > 0 {
		cfg.Sample.Rows = sampleRows
	}
	if sampleSeed != 0 {
		cfg.Sample.Seed = sampleSeed
	}
	if sampleDuplicateRate >= 0 {
		cfg.Sample.DuplicateRate = sampleDuplicateRate
	}
	if sampleMalformedRate >= 0 {
		cfg.Sample.MalformedRate = sampleMalformedRate
	}

	if err := cfg.ValidateSample(); err != nil {
		return err
	}

	_, err := datagen.WriteSampleFile(cfg.SampleOut(), datagen.SampleConfig{
		Rows:          cfg.Sample.Rows,
		Seed:          cfg.Sample.Seed,
		DuplicateRate: cfg.Sample.DuplicateRate,
		MalformedRate: cfg.Sample.MalformedRate,
	})
	return err
}
