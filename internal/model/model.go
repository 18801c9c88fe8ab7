//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package model defines the star-schema entities produced by the transform
// and consumed by the warehouse loader.
package model

import "time"

// Customer is a row of dim_customers.
type Customer struct {
	CustomerID int64
	FirstName  string
	LastName   string
	Segment    string
	City       string
	State      string
	Country    string
}

// Values returns the column values in dim_customers column order.
func (c Customer) Values() []any {
	return []any{c.CustomerID, c.FirstName, c.LastName, c.Segment, c.City, c.State, c.Country}
}

// Product is a row of dim_products.
type Product struct {
	ProductCardID  int64
	Name           string
	CategoryName   string
	DepartmentName string
	Price          float64
}

// Values returns the column values in dim_products column order.
func (p Product) Values() []any {
	return []any{p.ProductCardID, p.Name, p.CategoryName, p.DepartmentName, p.Price}
}

// LocationKey is the natural key of a location. The source carries no
// location identifier, so the four geographic columns together identify it.
type LocationKey struct {
	Market  string
	Region  string
	Country string
	City    string
}

// Location is a row of dim_location.
type Location struct {
	LocationID int64
	LocationKey
}

// Values returns the column values in dim_location column order.
func (l Location) Values() []any {
	return []any{l.LocationID, l.Market, l.Region, l.Country, l.City}
}

// OrderLineItem is a row of fact_orders.
type OrderLineItem struct {
	OrderID          int64
	OrderItemID      int64
	CustomerID       int64
	ProductCardID    int64
	LocationID       int64
	OrderDate        time.Time
	ShippingDate     time.Time
	ShippingMode     string
	DaysScheduled    int64
	DaysReal         int64
	DeliveryStatus   string
	OrderStatus      string
	BenefitPerOrder  float64
	SalesAmount      float64
	OrderQuantity    int64
	LateDeliveryRisk int64
}

// Values returns the column values in fact_orders column order.
func (f OrderLineItem) Values() []any {
	return []any{
		f.OrderID, f.OrderItemID, f.CustomerID, f.ProductCardID, f.LocationID,
		f.OrderDate, f.ShippingDate, f.ShippingMode,
		f.DaysScheduled, f.DaysReal,
		f.DeliveryStatus, f.OrderStatus,
		f.BenefitPerOrder, f.SalesAmount, f.OrderQuantity, f.LateDeliveryRisk,
	}
}

// OrderFields holds the fact attributes of a normalized record before the
// dimension references are resolved.
type OrderFields struct {
	OrderID          int64
	OrderItemID      int64
	OrderDate        time.Time
	ShippingDate     time.Time
	ShippingMode     string
	DaysScheduled    int64
	DaysReal         int64
	DeliveryStatus   string
	OrderStatus      string
	BenefitPerOrder  float64
	SalesAmount      float64
	OrderQuantity    int64
	LateDeliveryRisk int64
}

// NormalizedRow is one source record split into its star-schema parts.
type NormalizedRow struct {
	// Line is the 1-based source line the record was read from.
	Line     int
	Customer Customer
	Product  Product
	Location LocationKey
	Order    OrderFields
}

// RawRecord is one source row keyed by normalized column name.
type RawRecord struct {
	// Line is the 1-based line where the record starts in the source.
	Line   int
	Fields map[string]string
}
