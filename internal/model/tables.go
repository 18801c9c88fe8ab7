//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package model

import "fmt"

// Dimension identifies one of the dimension tables.
type Dimension int

const (
	DimCustomer Dimension = iota
	DimProduct
	DimLocation
)

// Dimensions lists every dimension in load order.
var Dimensions = []Dimension{DimCustomer, DimProduct, DimLocation}

// Table names of the warehouse.
const (
	TableCustomers = "dim_customers"
	TableProducts  = "dim_products"
	TableLocation  = "dim_location"
	TableFacts     = "fact_orders"
)

var (
	customerColumns = []string{"customer_id", "f_name", "l_name", "segment", "city", "state", "country"}
	productColumns  = []string{"product_card_id", "product_name", "category_name", "department_name", "product_price"}
	locationColumns = []string{"location_id", "market", "order_region", "order_country", "order_city"}
	factColumns     = []string{
		"order_id", "order_item_id", "customer_id", "product_card_id", "location_id",
		"order_date", "shipping_date", "shipping_mode",
		"days_scheduled", "days_real",
		"delivery_status", "order_status",
		"benefit_per_order", "sales_amount", "order_quantity", "late_delivery_risk",
	}
)

// String returns the short dimension name used in logs and summaries.
func (d Dimension) String() string {
	switch d {
	case DimCustomer:
		return "customer"
	case DimProduct:
		return "product"
	case DimLocation:
		return "location"
	default:
		return fmt.Sprintf("dimension(%d)", int(d))
	}
}

// Table returns the warehouse table backing the dimension.
func (d Dimension) Table() string {
	switch d {
	case DimCustomer:
		return TableCustomers
	case DimProduct:
		return TableProducts
	case DimLocation:
		return TableLocation
	default:
		return ""
	}
}

// Columns returns the dimension table columns in insert order.
func (d Dimension) Columns() []string {
	switch d {
	case DimCustomer:
		return customerColumns
	case DimProduct:
		return productColumns
	case DimLocation:
		return locationColumns
	default:
		return nil
	}
}

// FactColumns returns the fact_orders columns in insert order.
func FactColumns() []string {
	return factColumns
}
