//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-scetl/internal/model"
)

// Source columns used by the transform, as normalized by the reader.
const (
	colCustomerID      = "customer_id"
	colCustomerFName   = "customer_fname"
	colCustomerLName   = "customer_lname"
	colCustomerSegment = "customer_segment"
	colCustomerCity    = "customer_city"
	colCustomerState   = "customer_state"
	colCustomerCountry = "customer_country"
	colProductCardID   = "product_card_id"
	colProductName     = "product_name"
	colCategoryName    = "category_name"
	colDepartmentName  = "department_name"
	colProductPrice    = "product_price"
	colMarket          = "market"
	colOrderRegion     = "order_region"
	colOrderCountry    = "order_country"
	colOrderCity       = "order_city"
	colOrderID         = "order_id"
	colOrderItemID     = "order_item_id"
	colOrderDate       = "order_date_dateorders"
	colShippingDate    = "shipping_date_dateorders"
	colShippingMode    = "shipping_mode"
	colDaysScheduled   = "days_for_shipment_scheduled"
	colDaysReal        = "days_for_shipping_real"
	colDeliveryStatus  = "delivery_status"
	colOrderStatus     = "order_status"
	colBenefit         = "benefit_per_order"
	colSales           = "sales"
	colQuantity        = "order_item_quantity"
	colLateRisk        = "late_delivery_risk"
)

// RequiredColumns lists every source column the normalizer reads.
var RequiredColumns = []string{
	colCustomerID, colCustomerFName, colCustomerLName, colCustomerSegment,
	colCustomerCity, colCustomerState, colCustomerCountry,
	colProductCardID, colProductName, colCategoryName, colDepartmentName, colProductPrice,
	colMarket, colOrderRegion, colOrderCountry, colOrderCity,
	colOrderID, colOrderItemID, colOrderDate, colShippingDate, colShippingMode,
	colDaysScheduled, colDaysReal, colDeliveryStatus, colOrderStatus,
	colBenefit, colSales, colQuantity, colLateRisk,
}

// dateLayouts are tried in order. The first two cover the DataCo export.
var dateLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// CheckHeader returns a *SchemaViolationError if any required column is
// absent from header.
func CheckHeader(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaViolationError{Missing: missing}
	}
	return nil
}

// Normalize splits one raw record into its customer, product, location and
// order parts. It returns *MalformedRowError when a value cannot be parsed
// and *SchemaViolationError when the record lacks a required column.
func Normalize(rec model.RawRecord) (model.NormalizedRow, error) {
	p := rowParser{rec: rec}

	row := model.NormalizedRow{
		Line: rec.Line,
		Customer: model.Customer{
			CustomerID: p.integer(colCustomerID),
			FirstName:  p.text(colCustomerFName),
			LastName:   p.text(colCustomerLName),
			Segment:    p.text(colCustomerSegment),
			City:       p.text(colCustomerCity),
			State:      p.text(colCustomerState),
			Country:    p.text(colCustomerCountry),
		},
		Product: model.Product{
			ProductCardID:  p.integer(colProductCardID),
			Name:           p.text(colProductName),
			CategoryName:   p.text(colCategoryName),
			DepartmentName: p.text(colDepartmentName),
			Price:          p.number(colProductPrice),
		},
		Location: model.LocationKey{
			Market:  p.text(colMarket),
			Region:  p.text(colOrderRegion),
			Country: p.text(colOrderCountry),
			City:    p.text(colOrderCity),
		},
		Order: model.OrderFields{
			OrderID:          p.integer(colOrderID),
			OrderItemID:      p.integer(colOrderItemID),
			OrderDate:        p.date(colOrderDate),
			ShippingDate:     p.date(colShippingDate),
			ShippingMode:     p.text(colShippingMode),
			DaysScheduled:    p.integer(colDaysScheduled),
			DaysReal:         p.integer(colDaysReal),
			DeliveryStatus:   p.text(colDeliveryStatus),
			OrderStatus:      p.text(colOrderStatus),
			BenefitPerOrder:  p.number(colBenefit),
			SalesAmount:      p.number(colSales),
			OrderQuantity:    p.integer(colQuantity),
			LateDeliveryRisk: p.flag(colLateRisk),
		},
	}

	if p.err != nil {
		return model.NormalizedRow{}, p.err
	}
	return row, nil
}

// rowParser records the first failure and turns later reads into no-ops.
type rowParser struct {
	rec model.RawRecord
	err error
}

func (p *rowParser) raw(col string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, ok := p.rec.Fields[col]
	if !ok {
		p.err = &SchemaViolationError{Missing: []string{col}}
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (p *rowParser) fail(col, value, reason string) {
	p.err = &MalformedRowError{Line: p.rec.Line, Column: col, Value: value, Reason: reason}
}

func (p *rowParser) text(col string) string {
	v, _ := p.raw(col)
	return v
}

func (p *rowParser) integer(col string) int64 {
	v, ok := p.raw(col)
	if !ok {
		return 0
	}
	if v == "" {
		p.fail(col, v, "missing value")
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// Pandas exports integer columns as "12.0" when a column had blanks.
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int64(f)) {
			p.fail(col, v, "not an integer")
			return 0
		}
		n = int64(f)
	}
	return n
}

func (p *rowParser) number(col string) float64 {
	v, ok := p.raw(col)
	if !ok {
		return 0
	}
	if v == "" {
		p.fail(col, v, "missing value")
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.fail(col, v, "not a number")
		return 0
	}
	return f
}

func (p *rowParser) flag(col string) int64 {
	v, ok := p.raw(col)
	if !ok {
		return 0
	}
	switch v {
	case "0":
		return 0
	case "1":
		return 1
	case "":
		p.fail(col, v, "missing value")
	default:
		p.fail(col, v, "expected 0 or 1")
	}
	return 0
}

func (p *rowParser) date(col string) time.Time {
	v, ok := p.raw(col)
	if !ok {
		return time.Time{}
	}
	if v == "" {
		p.fail(col, v, "missing value")
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	p.fail(col, v, "unrecognized date")
	return time.Time{}
}
