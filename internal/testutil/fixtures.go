//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Columns is the normalized source header used by fixture rows.
var Columns = []string{
	"customer_id", "customer_fname", "customer_lname", "customer_segment",
	"customer_city", "customer_state", "customer_country",
	"product_card_id", "product_name", "category_name", "department_name", "product_price",
	"market", "order_region", "order_country", "order_city",
	"order_id", "order_item_id", "order_date_dateorders", "shipping_date_dateorders",
	"shipping_mode", "days_for_shipment_scheduled", "days_for_shipping_real",
	"delivery_status", "order_status", "benefit_per_order", "sales",
	"order_item_quantity", "late_delivery_risk",
}

// baseRow is a valid source row, one late Standard Class delivery.
var baseRow = map[string]string{
	"customer_id":                 "1",
	"customer_fname":              "Mary",
	"customer_lname":              "Smith",
	"customer_segment":            "Consumer",
	"customer_city":               "Caguas",
	"customer_state":              "PR",
	"customer_country":            "Puerto Rico",
	"product_card_id":             "1360",
	"product_name":                "Smart watch",
	"category_name":               "Sporting Goods",
	"department_name":             "Fitness",
	"product_price":               "327.75",
	"market":                      "Pacific Asia",
	"order_region":                "Southeast Asia",
	"order_country":               "Indonesia",
	"order_city":                  "Bekasi",
	"order_id":                    "77202",
	"order_item_id":               "180517",
	"order_date_dateorders":       "1/31/2018 22:56",
	"shipping_date_dateorders":    "2/6/2018 22:56",
	"shipping_mode":               "Standard Class",
	"days_for_shipment_scheduled": "4",
	"days_for_shipping_real":      "6",
	"delivery_status":             "Late delivery",
	"order_status":                "COMPLETE",
	"benefit_per_order":           "91.25",
	"sales":                       "327.75",
	"order_item_quantity":         "1",
	"late_delivery_risk":          "1",
}

// Row returns a valid source row keyed by normalized column name with the
// given overrides applied. A key mapped to "-" is removed.
func Row(overrides map[string]string) map[string]string {
	row := make(map[string]string, len(baseRow))
	for k, v := range baseRow {
		row[k] = v
	}
	for k, v := range overrides {
		if v == "-" {
			delete(row, k)
			continue
		}
		row[k] = v
	}
	return row
}

// Record renders row in the order of header.
func Record(header []string, row map[string]string) []string {
	rec := make([]string, len(header))
	for i, h := range header {
		rec[i] = row[h]
	}
	return rec
}

// CSV renders a header and rows as comma-separated text.
func CSV(header []string, rows ...map[string]string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(header)
	for _, r := range rows {
		_ = w.Write(Record(header, r))
	}
	w.Flush()
	return b.String()
}

// WriteSource writes rows as a source file under a temporary directory and
// returns its path.
func WriteSource(t *testing.T, rows ...map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "source.csv")
	if err := os.WriteFile(path, []byte(CSV(Columns, rows...)), 0o644); err != nil {
		t.Fatalf("Failed to write source file: %v", err)
	}
	return path
}
