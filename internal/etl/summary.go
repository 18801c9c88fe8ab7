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
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pgEdge/pgedge-scetl/internal/logging"
	"github.com/pgEdge/pgedge-scetl/internal/model"
)

// DropReason classifies why a source row was not loaded.
type DropReason string

const (
	DropMalformed    DropReason = "malformed"
	DropDuplicateKey DropReason = "duplicate_key"
)

// rowLevel is the MalformedByColumn key for rows that could not be split
// into columns at all.
const rowLevel = "(row)"

// Summary reports the outcome of a run.
type Summary struct {
	RunID string

	RowsRead       int
	FactsAssembled int
	RowsLoaded     int

	Dropped           map[DropReason]int
	MalformedByColumn map[string]int

	Dimensions map[model.Dimension]int
	Conflicts  map[model.Dimension]int

	// LateRiskMismatches counts loaded rows whose late_delivery_risk flag
	// disagrees with days_real > days_scheduled.
	LateRiskMismatches int

	TransformDuration time.Duration
	LoadDuration      time.Duration
}

func newSummary(runID string) *Summary {
	return &Summary{
		RunID:             runID,
		Dropped:           make(map[DropReason]int),
		MalformedByColumn: make(map[string]int),
		Dimensions:        make(map[model.Dimension]int),
		Conflicts:         make(map[model.Dimension]int),
	}
}

// RowsDropped returns the total number of rows dropped for any reason.
func (s *Summary) RowsDropped() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

func (s *Summary) recordMalformed(e *MalformedRowError) {
	s.Dropped[DropMalformed]++
	col := e.Column
	if col == "" {
		col = rowLevel
	}
	s.MalformedByColumn[col]++
	logging.Debug().
		Int("line", e.Line).
		Str("column", e.Column).
		Str("value", e.Value).
		Str("reason", e.Reason).
		Msg("Dropped malformed row")
}

func (s *Summary) recordDuplicate(e *DuplicateKeyError) {
	s.Dropped[DropDuplicateKey]++
	logging.Debug().
		Int("line", e.Line).
		Int64("order_item_id", e.Key).
		Msg("Dropped duplicate line item")
}

// Log writes the summary as a single structured event.
func (s *Summary) Log() {
	ev := logging.Info().
		Str("run_id", s.RunID).
		Int("rows_read", s.RowsRead).
		Int("rows_loaded", s.RowsLoaded).
		Int("rows_dropped", s.RowsDropped()).
		Int("dropped_malformed", s.Dropped[DropMalformed]).
		Int("dropped_duplicate_key", s.Dropped[DropDuplicateKey]).
		Int("late_risk_mismatches", s.LateRiskMismatches)
	for _, dim := range model.Dimensions {
		ev = ev.Int(dim.Table(), s.Dimensions[dim])
	}
	ev.Msg("Run summary")
}

// Render writes the summary as text tables.
func (s *Summary) Render(w io.Writer) {
	t := newTable(w, fmt.Sprintf("Run %s", s.RunID))
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"Rows read", s.RowsRead})
	t.AppendRow(table.Row{"Rows loaded", s.RowsLoaded})
	t.AppendRow(table.Row{"Rows dropped", s.RowsDropped()})
	t.AppendRow(table.Row{"  malformed", s.Dropped[DropMalformed]})
	t.AppendRow(table.Row{"  duplicate order_item_id", s.Dropped[DropDuplicateKey]})
	t.AppendSeparator()
	for _, dim := range model.Dimensions {
		t.AppendRow(table.Row{dim.Table(), s.Dimensions[dim]})
	}
	t.AppendRow(table.Row{"Attribute conflicts (first seen kept)",
		s.Conflicts[model.DimCustomer] + s.Conflicts[model.DimProduct]})
	t.AppendRow(table.Row{"Late risk flag mismatches", s.LateRiskMismatches})
	t.Render()

	if len(s.MalformedByColumn) == 0 {
		return
	}

	cols := make([]string, 0, len(s.MalformedByColumn))
	for c := range s.MalformedByColumn {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	mt := newTable(w, "Malformed rows by column")
	mt.AppendHeader(table.Row{"Column", "Rows"})
	for _, c := range cols {
		mt.AppendRow(table.Row{c, s.MalformedByColumn[c]})
	}
	mt.Render()
}

// newTable returns a table whose first column is at least as wide as the
// title, so the title renders on one line.
func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: text.RuneWidthWithoutEscSequences(title)},
	})
	return t
}
