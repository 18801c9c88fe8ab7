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

	"github.com/pgEdge/pgedge-scetl/internal/dashboard"
	"github.com/pgEdge/pgedge-scetl/internal/warehouse"
)

var (
	reportMarkets      []string
	reportShippingMode string
	reportStatus       string
	reportAllStatuses  bool
	reportTop          int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print dashboard KPIs for the loaded warehouse",
	Long: `Query the warehouse and print the dashboard: total orders, on-time
delivery rate against the 85% target, late deliveries and average sales,
followed by shipping mode performance, late delivery risk by region and sales
by market.

Example:
  pgedge-scetl report
  pgedge-scetl report --market LATAM --market Europe --shipping-mode "First Class"
  pgedge-scetl report --all-statuses --top 5`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringArrayVar(&reportMarkets, "market", nil,
		"restrict to a market (repeatable; default: all markets)")
	reportCmd.Flags().StringVar(&reportShippingMode, "shipping-mode", dashboard.AllModes,
		"restrict to a shipping mode")
	reportCmd.Flags().StringVar(&reportStatus, "status", "",
		"restrict to an order status (default: COMPLETE)")
	reportCmd.Flags().BoolVar(&reportAllStatuses, "all-statuses", false,
		"include every order status")
	reportCmd.Flags().IntVar(&reportTop, "top", 0,
		"number of regions in the late risk breakdown (default: 10)")
}

func runReport(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if reportStatus != "" {
		cfg.Report.Status = reportStatus
	}
	if reportAllStatuses {
		cfg.Report.Status = ""
	}
	if reportTop > 0 {
		cfg.Report.Top = reportTop
	}

	if err := cfg.ValidateReport(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	wh, err := warehouse.Open(ctx, cfg.Warehouse.Driver, cfg.WarehouseDSN())
	if err != nil {
		return fmt.Errorf("failed to open warehouse: %w", err)
	}
	defer wh.Close()

	filter := dashboard.Filter{
		Status:       cfg.Report.Status,
		Markets:      reportMarkets,
		ShippingMode: reportShippingMode,
	}

	report, err := dashboard.New(wh.DB(), wh.Dialect()).Build(ctx, filter, cfg.Report.Top)
	if err != nil {
		return err
	}

	report.Render(cmd.OutOrStdout())
	return nil
}
