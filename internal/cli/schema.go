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

	"github.com/pgEdge/pgedge-scetl/internal/warehouse"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the warehouse DDL",
	Long: `Print the statements 'load' runs to recreate the warehouse, in the
dialect of the configured driver.

Example:
  pgedge-scetl schema --driver postgres`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		dialect, err := warehouse.DialectFor(cfg.Warehouse.Driver)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), dialect.DDL())
		return nil
	},
}
