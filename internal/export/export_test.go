//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pgEdge/pgedge-scetl/internal/db"
	"github.com/pgEdge/pgedge-scetl/internal/etl"
	"github.com/pgEdge/pgedge-scetl/internal/source"
	"github.com/pgEdge/pgedge-scetl/internal/testutil"
	"github.com/pgEdge/pgedge-scetl/internal/warehouse"
)

// loadedStore returns an in-memory warehouse holding two line items of one
// order shipped to two cities.
func loadedStore(t *testing.T) *warehouse.SQLStore {
	t.Helper()
	ctx := context.Background()

	store, err := warehouse.OpenSQLite(ctx, db.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	path := testutil.WriteSource(t,
		testutil.Row(nil),
		testutil.Row(map[string]string{"order_item_id": "180518", "order_city": "Jakarta", "sales": "100"}),
	)
	r, err := source.Open(path, source.DefaultOptions())
	require.NoError(t, err)
	defer r.Close()

	_, err = etl.New(store, etl.Config{RunID: "export"}).Run(ctx, r)
	require.NoError(t, err)
	return store
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestReadDatasets(t *testing.T) {
	store := loadedStore(t)

	datasets, err := ReadDatasets(context.Background(), store.DB())
	require.NoError(t, err)

	names := make([]string, len(datasets))
	for i, ds := range datasets {
		names[i] = ds.Name
	}
	assert.Equal(t, []string{"Fact_Shipments", "Dim_Customers", "Dim_Products", "Dim_Location", "Param_Scenarios"}, names)

	facts := datasets[0]
	assert.Equal(t, "order_id", facts.Header[0])
	assert.Contains(t, facts.Header, "late_delivery_risk")
	require.Len(t, facts.Rows, 2)

	customers := datasets[1]
	assert.Equal(t, []string{"customer_id", "f_name", "l_name", "segment", "city", "state", "country"}, customers.Header)
	require.Len(t, customers.Rows, 1)
	assert.Equal(t, "Mary", customers.Rows[0][1])

	locations := datasets[3]
	require.Len(t, locations.Rows, 2)
	assert.Equal(t, "Bekasi", locations.Rows[0][4])
	assert.Equal(t, "Jakarta", locations.Rows[1][4])
}

func TestRun(t *testing.T) {
	store := loadedStore(t)
	dir := filepath.Join(t.TempDir(), "powerbi_data")

	written, err := Run(context.Background(), store.DB(), Options{Dir: dir, XLSX: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "Fact_Shipments.csv"),
		filepath.Join(dir, "Dim_Customers.csv"),
		filepath.Join(dir, "Dim_Products.csv"),
		filepath.Join(dir, "Dim_Location.csv"),
		filepath.Join(dir, "Param_Scenarios.csv"),
		filepath.Join(dir, WorkbookName),
	}, written)

	products := readCSV(t, filepath.Join(dir, "Dim_Products.csv"))
	assert.Equal(t, [][]string{
		{"product_card_id", "product_name", "category_name", "department_name", "product_price"},
		{"1360", "Smart watch", "Sporting Goods", "Fitness", "327.75"},
	}, products)

	scenarios := readCSV(t, filepath.Join(dir, "Param_Scenarios.csv"))
	assert.Equal(t, [][]string{
		{"Scenario_Mode", "Cost_Factor", "Speed_Factor"},
		{"Standard Class", "1", "1"},
		{"Second Class", "1.2", "1.1"},
		{"First Class", "1.5", "1.3"},
		{"Same Day", "2", "1.5"},
	}, scenarios)

	facts := readCSV(t, filepath.Join(dir, "Fact_Shipments.csv"))
	assert.Len(t, facts, 3)

	xl, err := excelize.OpenFile(filepath.Join(dir, WorkbookName))
	require.NoError(t, err)
	defer xl.Close()

	assert.Equal(t, []string{"Fact_Shipments", "Dim_Customers", "Dim_Products", "Dim_Location", "Param_Scenarios"}, xl.GetSheetList())

	rows, err := xl.GetRows("Dim_Location")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"location_id", "market", "order_region", "order_country", "order_city"}, rows[0])
	assert.Equal(t, "Jakarta", rows[2][4])
}

func TestRunWithoutWorkbook(t *testing.T) {
	store := loadedStore(t)
	dir := t.TempDir()

	written, err := Run(context.Background(), store.DB(), Options{Dir: dir})
	require.NoError(t, err)
	assert.Len(t, written, 5)

	_, err = os.Stat(filepath.Join(dir, WorkbookName))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunUnloadedWarehouse(t *testing.T) {
	store, err := warehouse.OpenSQLite(context.Background(), db.MemoryDSN)
	require.NoError(t, err)
	defer store.Close()

	_, err = Run(context.Background(), store.DB(), Options{Dir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read fact_orders")
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2018, 1, 31, 22, 56, 0, 0, time.UTC)

	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "abc", formatValue([]byte("abc")))
	assert.Equal(t, "2018-01-31 22:56:00", formatValue(ts))
	assert.Equal(t, "327.75", formatValue(327.75))
	assert.Equal(t, "42", formatValue(int64(42)))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Dim_Customers", sheetName("Dim_Customers"))
	assert.Equal(t, "a_b_c", sheetName("a/b:c"))
	assert.Equal(t, "Sheet", sheetName("  "))
	assert.Len(t, sheetName("This_Name_Is_Far_Too_Long_For_A_Sheet"), 31)
}
