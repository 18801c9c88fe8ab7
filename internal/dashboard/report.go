//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package dashboard

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pgEdge/pgedge-scetl/internal/db"
)

// OnTimeTarget is the on-time rate the dashboard compares against.
const OnTimeTarget = 85.0

// Report bundles every dashboard panel for one filter.
type Report struct {
	Filter        Filter
	Metadata      map[string]string
	Markets       []string
	KPIs          KPIs
	ShippingModes []ModePerformance
	RegionRisk    []RegionRisk
	MarketSales   []MarketSales
}

// Build runs all dashboard queries. It fails if the warehouse has never been
// loaded or if the filter names a market the warehouse does not hold.
func (d *Dashboard) Build(ctx context.Context, f Filter, top int) (*Report, error) {
	meta, err := db.GetAllMetadata(ctx, d.db)
	if err != nil {
		return nil, fmt.Errorf("warehouse has not been loaded; run 'pgedge-scetl load' first: %w", err)
	}

	r := &Report{Filter: f, Metadata: meta}
	if r.Markets, err = d.Markets(ctx); err != nil {
		return nil, err
	}
	for _, m := range f.Markets {
		if !slices.Contains(r.Markets, m) {
			return nil, fmt.Errorf("unknown market %q; available markets: %s", m, strings.Join(r.Markets, ", "))
		}
	}

	if r.KPIs, err = d.KPIs(ctx, f); err != nil {
		return nil, err
	}
	if r.ShippingModes, err = d.ShippingModes(ctx, f); err != nil {
		return nil, err
	}
	if r.RegionRisk, err = d.LateRiskByRegion(ctx, f, top); err != nil {
		return nil, err
	}
	if r.MarketSales, err = d.MarketSales(ctx, f); err != nil {
		return nil, err
	}
	return r, nil
}

// Render writes the report as text tables.
func (r *Report) Render(w io.Writer) {
	if len(r.Metadata) > 0 {
		mt := newTable(w, "Last load")
		mt.AppendHeader(table.Row{"Key", "Value"})
		keys := make([]string, 0, len(r.Metadata))
		for k := range r.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			mt.AppendRow(table.Row{k, r.Metadata[k]})
		}
		if len(r.Markets) > 0 {
			mt.AppendRow(table.Row{"markets", strings.Join(r.Markets, ", ")})
		}
		mt.Render()
	}

	k := r.KPIs
	kt := newTable(w, "Key metrics")
	kt.AppendHeader(table.Row{"Total Orders", "On-Time Rate", "vs Target", "Late Risk Count", "Avg Sales per Order"})
	kt.AppendRow(table.Row{
		k.TotalOrders,
		fmt.Sprintf("%.1f%%", k.OnTimeRate),
		fmt.Sprintf("%+.1f%%", k.OnTimeRate-OnTimeTarget),
		k.LateOrders,
		fmt.Sprintf("$%.2f", k.AvgSales),
	})
	kt.Render()

	st := newTable(w, "Shipping mode performance")
	st.AppendHeader(table.Row{"Shipping Mode", "Orders", "Avg Days Scheduled", "Avg Days Real"})
	for _, m := range r.ShippingModes {
		st.AppendRow(table.Row{m.ShippingMode, m.Orders,
			fmt.Sprintf("%.2f", m.AvgDaysScheduled), fmt.Sprintf("%.2f", m.AvgDaysReal)})
	}
	st.Render()

	rt := newTable(w, "Late delivery risk by region")
	rt.AppendHeader(table.Row{"Region", "Late Count"})
	for _, rr := range r.RegionRisk {
		rt.AppendRow(table.Row{rr.Region, rr.LateCount})
	}
	rt.Render()

	ms := newTable(w, "Market sales and risk")
	ms.AppendHeader(table.Row{"Market", "Region", "Sales", "Avg Late Risk"})
	for _, m := range r.MarketSales {
		ms.AppendRow(table.Row{m.Market, m.Region,
			fmt.Sprintf("%.2f", m.SalesAmount), fmt.Sprintf("%.3f", m.AvgLateRisk)})
	}
	ms.Render()
}

// newTable returns a table whose first column is at least as wide as the
// title, so the title renders on one line.
func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.Style().Title.Align = text.AlignLeft
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: text.RuneWidthWithoutEscSequences(title)},
	})
	return t
}
