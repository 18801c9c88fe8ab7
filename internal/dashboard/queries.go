//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package dashboard runs the read-only analytical queries behind the
// supply-chain control dashboard.
package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-scetl/internal/warehouse"
)

// AllModes selects every shipping mode.
const AllModes = "All"

// Filter narrows the fact rows the dashboard considers.
type Filter struct {
	// Status keeps only rows with this order_status. Empty keeps all.
	Status string

	// Markets keeps only rows in these markets. Empty keeps all.
	Markets []string

	// ShippingMode keeps only rows with this shipping mode. Empty or
	// AllModes keeps all.
	ShippingMode string
}

// KPIs are the headline metrics.
type KPIs struct {
	TotalOrders int64
	LateOrders  int64
	OnTimeRate  float64
	AvgSales    float64
}

// ModePerformance compares scheduled and actual transit days per shipping
// mode.
type ModePerformance struct {
	ShippingMode     string
	Orders           int64
	AvgDaysScheduled float64
	AvgDaysReal      float64
}

// RegionRisk counts late-risk line items in a region.
type RegionRisk struct {
	Region    string
	LateCount int64
}

// MarketSales sizes a market/region cell by sales and colors it by risk.
type MarketSales struct {
	Market      string
	Region      string
	SalesAmount float64
	AvgLateRisk float64
}

// Dashboard queries a loaded warehouse.
type Dashboard struct {
	db      *sql.DB
	dialect warehouse.Dialect
}

// New creates a dashboard over conn.
func New(conn *sql.DB, dialect warehouse.Dialect) *Dashboard {
	return &Dashboard{db: conn, dialect: dialect}
}

// where builds the shared filter clause and its arguments.
func (d *Dashboard) where(f Filter) (string, []any) {
	var conds []string
	var args []any

	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, "f.order_status = "+d.dialect.Placeholder(len(args)))
	}
	if len(f.Markets) > 0 {
		ph := make([]string, len(f.Markets))
		for i, m := range f.Markets {
			args = append(args, m)
			ph[i] = d.dialect.Placeholder(len(args))
		}
		conds = append(conds, "d.market IN ("+strings.Join(ph, ", ")+")")
	}
	if f.ShippingMode != "" && f.ShippingMode != AllModes {
		args = append(args, f.ShippingMode)
		conds = append(conds, "f.shipping_mode = "+d.dialect.Placeholder(len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const fromClause = `
        FROM fact_orders f
        JOIN dim_location d ON f.location_id = d.location_id`

// KPIs returns the headline metrics for f.
func (d *Dashboard) KPIs(ctx context.Context, f Filter) (KPIs, error) {
	where, args := d.where(f)
	query := `
        SELECT COUNT(*),
               COALESCE(SUM(CASE WHEN f.late_delivery_risk = 1 THEN 1 ELSE 0 END), 0),
               AVG(f.sales_amount)` + fromClause + where

	var k KPIs
	var avgSales sql.NullFloat64
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&k.TotalOrders, &k.LateOrders, &avgSales); err != nil {
		return KPIs{}, fmt.Errorf("kpi query failed: %w", err)
	}
	k.AvgSales = avgSales.Float64
	if k.TotalOrders > 0 {
		k.OnTimeRate = 100 - float64(k.LateOrders)/float64(k.TotalOrders)*100
	}
	return k, nil
}

// ShippingModes returns average scheduled vs real days per shipping mode.
func (d *Dashboard) ShippingModes(ctx context.Context, f Filter) ([]ModePerformance, error) {
	where, args := d.where(f)
	query := `
        SELECT f.shipping_mode, COUNT(*),
               AVG(f.days_scheduled), AVG(f.days_real)` + fromClause + where + `
        GROUP BY f.shipping_mode
        ORDER BY f.shipping_mode`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("shipping mode query failed: %w", err)
	}
	defer rows.Close()

	var out []ModePerformance
	for rows.Next() {
		var m ModePerformance
		var mode sql.NullString
		var sched, actual sql.NullFloat64
		if err := rows.Scan(&mode, &m.Orders, &sched, &actual); err != nil {
			return nil, err
		}
		m.ShippingMode = mode.String
		m.AvgDaysScheduled = sched.Float64
		m.AvgDaysReal = actual.Float64
		out = append(out, m)
	}
	return out, rows.Err()
}

// LateRiskByRegion returns the regions with the most late-risk line items,
// highest first.
func (d *Dashboard) LateRiskByRegion(ctx context.Context, f Filter, top int) ([]RegionRisk, error) {
	where, args := d.where(f)
	if where == "" {
		where = " WHERE f.late_delivery_risk = 1"
	} else {
		where += " AND f.late_delivery_risk = 1"
	}
	args = append(args, top)
	query := `
        SELECT d.order_region, COUNT(*) AS late_count` + fromClause + where + `
        GROUP BY d.order_region
        ORDER BY late_count DESC, d.order_region
        LIMIT ` + d.dialect.Placeholder(len(args))

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("late risk query failed: %w", err)
	}
	defer rows.Close()

	var out []RegionRisk
	for rows.Next() {
		var r RegionRisk
		var region sql.NullString
		if err := rows.Scan(&region, &r.LateCount); err != nil {
			return nil, err
		}
		r.Region = region.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarketSales returns sales and average late risk per market and region.
func (d *Dashboard) MarketSales(ctx context.Context, f Filter) ([]MarketSales, error) {
	where, args := d.where(f)
	query := `
        SELECT d.market, d.order_region,
               SUM(f.sales_amount), AVG(f.late_delivery_risk)` + fromClause + where + `
        GROUP BY d.market, d.order_region
        ORDER BY d.market, d.order_region`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("market sales query failed: %w", err)
	}
	defer rows.Close()

	var out []MarketSales
	for rows.Next() {
		var m MarketSales
		var market, region sql.NullString
		var sales, risk sql.NullFloat64
		if err := rows.Scan(&market, &region, &sales, &risk); err != nil {
			return nil, err
		}
		m.Market = market.String
		m.Region = region.String
		m.SalesAmount = sales.Float64
		m.AvgLateRisk = risk.Float64
		out = append(out, m)
	}
	return out, rows.Err()
}

// Markets returns the distinct markets in the warehouse.
func (d *Dashboard) Markets(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT DISTINCT market FROM dim_location ORDER BY market`)
	if err != nil {
		return nil, fmt.Errorf("market query failed: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m sql.NullString
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, m.String)
	}
	return out, rows.Err()
}
