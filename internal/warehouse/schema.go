//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-scetl/internal/db"
)

// createSchemaSQL creates the star schema. The statements are valid for
// both PostgreSQL and SQLite.
var createSchemaSQL = []string{
	`-- Dimension: customers, keyed by the source customer_id
CREATE TABLE dim_customers (
    customer_id BIGINT PRIMARY KEY,
    f_name      TEXT,
    l_name      TEXT,
    segment     TEXT,
    city        TEXT,
    state       TEXT,
    country     TEXT
)`,
	`-- Dimension: products, keyed by the source product_card_id
CREATE TABLE dim_products (
    product_card_id BIGINT PRIMARY KEY,
    product_name    TEXT,
    category_name   TEXT,
    department_name TEXT,
    product_price   DOUBLE PRECISION
)`,
	`-- Dimension: order locations, surrogate key in first-encounter order
CREATE TABLE dim_location (
    location_id   BIGINT PRIMARY KEY,
    market        TEXT,
    order_region  TEXT,
    order_country TEXT,
    order_city    TEXT,
    UNIQUE (market, order_region, order_country, order_city)
)`,
	`-- Fact: one row per order line item
CREATE TABLE fact_orders (
    order_id           BIGINT NOT NULL,
    order_item_id      BIGINT PRIMARY KEY,
    customer_id        BIGINT NOT NULL REFERENCES dim_customers(customer_id),
    product_card_id    BIGINT NOT NULL REFERENCES dim_products(product_card_id),
    location_id        BIGINT NOT NULL REFERENCES dim_location(location_id),
    order_date         TIMESTAMP,
    shipping_date      TIMESTAMP,
    shipping_mode      TEXT,
    days_scheduled     INTEGER,
    days_real          INTEGER,
    delivery_status    TEXT,
    order_status       TEXT,
    benefit_per_order  DOUBLE PRECISION,
    sales_amount       DOUBLE PRECISION,
    order_quantity     INTEGER,
    late_delivery_risk SMALLINT NOT NULL CHECK (late_delivery_risk IN (0, 1))
)`,
	`CREATE INDEX idx_fact_orders_customer ON fact_orders(customer_id)`,
	`CREATE INDEX idx_fact_orders_product ON fact_orders(product_card_id)`,
	`CREATE INDEX idx_fact_orders_location ON fact_orders(location_id)`,
	`CREATE INDEX idx_fact_orders_order_date ON fact_orders(order_date)`,
	db.CreateMetadataTableSQL,
}

// dropTables lists the warehouse tables in dependency order.
var dropTables = []string{
	"fact_orders",
	"dim_location",
	"dim_products",
	"dim_customers",
	db.MetadataTable,
}

// Dialect captures the SQL differences between the supported backends.
type Dialect struct {
	// Name is the driver name accepted in configuration.
	Name string

	// Cascade adds CASCADE to DROP TABLE so dependent views don't block a
	// rebuild.
	Cascade bool

	// Numbered selects $1-style bind parameters instead of ?.
	Numbered bool
}

// Supported dialects.
var (
	PostgresDialect = Dialect{Name: "postgres", Cascade: true, Numbered: true}
	SQLiteDialect   = Dialect{Name: "sqlite"}
)

// Placeholder returns the bind parameter for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d.Numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// DropStatements returns the statements that remove the warehouse.
func (d Dialect) DropStatements() []string {
	stmts := make([]string, len(dropTables))
	for i, t := range dropTables {
		stmts[i] = "DROP TABLE IF EXISTS " + t
		if d.Cascade {
			stmts[i] += " CASCADE"
		}
	}
	return stmts
}

// CreateStatements returns the statements that create the warehouse.
func (d Dialect) CreateStatements() []string {
	return createSchemaSQL
}

// DDL returns the full rebuild script as text.
func (d Dialect) DDL() string {
	var b strings.Builder
	for _, s := range d.DropStatements() {
		b.WriteString(s)
		b.WriteString(";\n")
	}
	b.WriteString("\n")
	for _, s := range d.CreateStatements() {
		b.WriteString(strings.TrimSpace(s))
		b.WriteString(";\n\n")
	}
	return b.String()
}

// insertSQL builds a multi-row INSERT for rows rows of len(columns) values.
func (d Dialect) insertSQL(table string, columns []string, rows int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")

	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for c := range columns {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.Placeholder(n))
			n++
		}
		b.WriteString(")")
	}
	return b.String()
}
