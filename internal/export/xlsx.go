//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes each dataset to its own sheet of one workbook.
func WriteXLSX(path string, datasets []Dataset) error {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	for i, ds := range datasets {
		name := sheetName(ds.Name)
		if i == 0 {
			// Rename default sheet
			if err := xl.SetSheetName(xl.GetSheetName(0), name); err != nil {
				return err
			}
		} else if _, err := xl.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}

		if err := writeSheet(xl, name, ds); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", name, err)
		}
	}

	if err := xl.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(xl *excelize.File, name string, ds Dataset) error {
	sw, err := xl.NewStreamWriter(name)
	if err != nil {
		return err
	}

	header := make([]any, len(ds.Header))
	for i, h := range ds.Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, row := range ds.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// cellValue keeps numbers numeric and renders timestamps as text.
func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(timeLayout)
	default:
		return t
	}
}

// sheetName makes name a valid Excel sheet name.
func sheetName(name string) string {
	// Excel sheet names cannot contain: : \ / ? * [ ] and must be <= 31 chars
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := strings.TrimSpace(replacer.Replace(name))
	if len(safe) > 31 {
		safe = safe[:31]
	}
	if safe == "" {
		return "Sheet"
	}
	return safe
}
