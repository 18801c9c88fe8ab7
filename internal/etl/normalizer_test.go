//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-scetl/internal/model"
	"github.com/pgEdge/pgedge-scetl/internal/testutil"
)

func record(line int, overrides map[string]string) model.RawRecord {
	return model.RawRecord{Line: line, Fields: testutil.Row(overrides)}
}

func TestRequiredColumnsMatchFixture(t *testing.T) {
	assert.ElementsMatch(t, testutil.Columns, RequiredColumns)
}

func TestCheckHeader(t *testing.T) {
	require.NoError(t, CheckHeader(testutil.Columns))

	header := append([]string{"extra"}, testutil.Columns[2:]...)
	err := CheckHeader(header)

	var schemaErr *SchemaViolationError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"customer_id", "customer_fname"}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "customer_id, customer_fname")
}

func TestNormalize(t *testing.T) {
	row, err := Normalize(record(2, nil))
	require.NoError(t, err)

	assert.Equal(t, 2, row.Line)
	assert.Equal(t, model.Customer{
		CustomerID: 1,
		FirstName:  "Mary",
		LastName:   "Smith",
		Segment:    "Consumer",
		City:       "Caguas",
		State:      "PR",
		Country:    "Puerto Rico",
	}, row.Customer)
	assert.Equal(t, int64(1360), row.Product.ProductCardID)
	assert.Equal(t, 327.75, row.Product.Price)
	assert.Equal(t, model.LocationKey{
		Market:  "Pacific Asia",
		Region:  "Southeast Asia",
		Country: "Indonesia",
		City:    "Bekasi",
	}, row.Location)

	o := row.Order
	assert.Equal(t, int64(77202), o.OrderID)
	assert.Equal(t, int64(180517), o.OrderItemID)
	assert.Equal(t, time.Date(2018, 1, 31, 22, 56, 0, 0, time.UTC), o.OrderDate)
	assert.Equal(t, time.Date(2018, 2, 6, 22, 56, 0, 0, time.UTC), o.ShippingDate)
	assert.Equal(t, "Standard Class", o.ShippingMode)
	assert.Equal(t, int64(4), o.DaysScheduled)
	assert.Equal(t, int64(6), o.DaysReal)
	assert.Equal(t, 91.25, o.BenefitPerOrder)
	assert.Equal(t, 327.75, o.SalesAmount)
	assert.Equal(t, int64(1), o.OrderQuantity)
	assert.Equal(t, int64(1), o.LateDeliveryRisk)
}

func TestNormalizeAcceptedValues(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		check     func(t *testing.T, row model.NormalizedRow)
	}{
		{
			name:      "text is trimmed",
			overrides: map[string]string{"customer_lname": "  Smith \t", "market": " LATAM "},
			check: func(t *testing.T, row model.NormalizedRow) {
				assert.Equal(t, "Smith", row.Customer.LastName)
				assert.Equal(t, "LATAM", row.Location.Market)
			},
		},
		{
			name:      "integer written as float",
			overrides: map[string]string{"order_item_quantity": "3.0"},
			check: func(t *testing.T, row model.NormalizedRow) {
				assert.Equal(t, int64(3), row.Order.OrderQuantity)
			},
		},
		{
			name:      "negative benefit",
			overrides: map[string]string{"benefit_per_order": "-42.5"},
			check: func(t *testing.T, row model.NormalizedRow) {
				assert.Equal(t, -42.5, row.Order.BenefitPerOrder)
			},
		},
		{
			name:      "ISO timestamp",
			overrides: map[string]string{"order_date_dateorders": "2018-01-31 22:56:10"},
			check: func(t *testing.T, row model.NormalizedRow) {
				assert.Equal(t, time.Date(2018, 1, 31, 22, 56, 10, 0, time.UTC), row.Order.OrderDate)
			},
		},
		{
			name:      "RFC3339 with offset is converted to UTC",
			overrides: map[string]string{"order_date_dateorders": "2018-01-31T22:56:00-05:00"},
			check: func(t *testing.T, row model.NormalizedRow) {
				assert.Equal(t, time.Date(2018, 2, 1, 3, 56, 0, 0, time.UTC), row.Order.OrderDate)
			},
		},
		{
			name:      "date only",
			overrides: map[string]string{"shipping_date_dateorders": "2018-02-06"},
			check: func(t *testing.T, row model.NormalizedRow) {
				assert.Equal(t, time.Date(2018, 2, 6, 0, 0, 0, 0, time.UTC), row.Order.ShippingDate)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := Normalize(record(2, tt.overrides))
			require.NoError(t, err)
			tt.check(t, row)
		})
	}
}

func TestNormalizeMalformed(t *testing.T) {
	tests := []struct {
		name   string
		column string
		value  string
		reason string
	}{
		{"unparseable price", "product_price", "n/a", "not a number"},
		{"missing customer id", "customer_id", "", "missing value"},
		{"fractional quantity", "order_item_quantity", "2.5", "not an integer"},
		{"NaN sales", "sales", "NaN", "not a number"},
		{"risk flag out of range", "late_delivery_risk", "2", "expected 0 or 1"},
		{"risk flag as word", "late_delivery_risk", "yes", "expected 0 or 1"},
		{"unknown date layout", "order_date_dateorders", "31 Jan 2018", "unrecognized date"},
		{"blank scheduled days", "days_for_shipment_scheduled", "  ", "missing value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(record(7, map[string]string{tt.column: tt.value}))

			var malformed *MalformedRowError
			require.True(t, errors.As(err, &malformed), "expected MalformedRowError, got %v", err)
			assert.Equal(t, 7, malformed.Line)
			assert.Equal(t, tt.column, malformed.Column)
			assert.Equal(t, tt.reason, malformed.Reason)
		})
	}
}

func TestNormalizeReportsFirstFailure(t *testing.T) {
	_, err := Normalize(record(3, map[string]string{
		"customer_id":   "abc",
		"product_price": "n/a",
	}))

	var malformed *MalformedRowError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "customer_id", malformed.Column)
}

func TestNormalizeMissingField(t *testing.T) {
	_, err := Normalize(record(3, map[string]string{"sales": "-"}))

	var schemaErr *SchemaViolationError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"sales"}, schemaErr.Missing)
}
