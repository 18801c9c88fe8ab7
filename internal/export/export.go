//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package export writes the loaded star schema to flat files for BI tools.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pgEdge/pgedge-scetl/internal/logging"
	"github.com/pgEdge/pgedge-scetl/internal/model"
)

// WorkbookName is the file name of the XLSX export.
const WorkbookName = "warehouse.xlsx"

// Dataset is one exported table.
type Dataset struct {
	// Name is the file base name and sheet name.
	Name   string
	Header []string
	Rows   [][]any
}

// Options configures an export.
type Options struct {
	// Dir receives the exported files. It is created if missing.
	Dir string

	// XLSX also writes every dataset into one workbook.
	XLSX bool
}

// tableExports maps warehouse tables to export names, in write order.
var tableExports = []struct {
	name    string
	table   string
	orderBy string
}{
	{"Fact_Shipments", model.TableFacts, "order_item_id"},
	{"Dim_Customers", model.TableCustomers, "customer_id"},
	{"Dim_Products", model.TableProducts, "product_card_id"},
	{"Dim_Location", model.TableLocation, "location_id"},
}

// Scenarios returns the what-if parameter table: the relative cost and speed
// of each shipping mode against Standard Class.
func Scenarios() Dataset {
	return Dataset{
		Name:   "Param_Scenarios",
		Header: []string{"Scenario_Mode", "Cost_Factor", "Speed_Factor"},
		Rows: [][]any{
			{"Standard Class", 1.0, 1.0},
			{"Second Class", 1.2, 1.1},
			{"First Class", 1.5, 1.3},
			{"Same Day", 2.0, 1.5},
		},
	}
}

// ReadDatasets reads every warehouse table plus the scenario table.
func ReadDatasets(ctx context.Context, conn *sql.DB) ([]Dataset, error) {
	datasets := make([]Dataset, 0, len(tableExports)+1)
	for _, te := range tableExports {
		ds, err := readTable(ctx, conn, te.name, te.table, te.orderBy)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	return append(datasets, Scenarios()), nil
}

func readTable(ctx context.Context, conn *sql.DB, name, table, orderBy string) (Dataset, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY %s", table, orderBy))
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Dataset{}, err
	}

	ds := Dataset{Name: name, Header: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Dataset{}, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		ds.Rows = append(ds.Rows, vals)
	}
	return ds, rows.Err()
}

// Run reads the warehouse and writes the configured files. It returns the
// paths written.
func Run(ctx context.Context, conn *sql.DB, opts Options) ([]string, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	datasets, err := ReadDatasets(ctx, conn)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, ds := range datasets {
		path := filepath.Join(opts.Dir, ds.Name+".csv")
		if err := WriteCSV(path, ds); err != nil {
			return written, err
		}
		logging.Info().
			Str("file", path).
			Int("rows", len(ds.Rows)).
			Msg("Exported table")
		written = append(written, path)
	}

	if opts.XLSX {
		path := filepath.Join(opts.Dir, WorkbookName)
		if err := WriteXLSX(path, datasets); err != nil {
			return written, err
		}
		logging.Info().Str("file", path).Msg("Exported workbook")
		written = append(written, path)
	}

	return written, nil
}

// timeLayout is used for timestamps in text exports.
const timeLayout = "2006-01-02 15:04:05"

// formatValue renders a scanned value as CSV text.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(timeLayout)
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}
