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

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-scetl/internal/db"
	"github.com/pgEdge/pgedge-scetl/internal/export"
	"github.com/pgEdge/pgedge-scetl/internal/warehouse"
)

var (
	exportDir    string
	exportNoXLSX bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the warehouse tables for BI tools",
	Long: `Write the loaded star schema as CSV files (Fact_Shipments, Dim_Customers,
Dim_Products, Dim_Location) together with the Param_Scenarios what-if table,
plus a warehouse.xlsx workbook with one sheet per file.

Example:
  pgedge-scetl export --dir powerbi_data
  pgedge-scetl export --no-xlsx`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "",
		"output directory (default: powerbi_data)")
	exportCmd.Flags().BoolVar(&exportNoXLSX, "no-xlsx", false,
		"skip the XLSX workbook")
}

func runExport(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if exportDir != "" {
		cfg.Export.Dir = exportDir
	}
	if exportNoXLSX {
		cfg.Export.XLSX = false
	}

	if err := cfg.ValidateWarehouse(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	wh, err := warehouse.Open(ctx, cfg.Warehouse.Driver, cfg.WarehouseDSN())
	if err != nil {
		return fmt.Errorf("failed to open warehouse: %w", err)
	}
	defer wh.Close()

	// Check that the warehouse was loaded
	if _, err := db.GetAllMetadata(ctx, wh.DB()); err != nil {
		return fmt.Errorf("warehouse has not been loaded; run 'pgedge-scetl load' first")
	}

	files, err := export.Run(ctx, wh.DB(), export.Options{
		Dir:  cfg.Export.Dir,
		XLSX: cfg.Export.XLSX,
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	for _, f := range files {
		cmd.Println(f)
	}
	return nil
}
