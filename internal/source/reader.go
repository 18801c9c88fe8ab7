//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package source streams records from the flat supply-chain export.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pgEdge/pgedge-scetl/internal/etl"
	"github.com/pgEdge/pgedge-scetl/internal/model"
)

// Options configures a Reader.
type Options struct {
	// Delimiter is the field separator. Zero means ','.
	Delimiter rune

	// InvalidBytes controls tolerant decoding of field values.
	InvalidBytes InvalidBytePolicy
}

// DefaultOptions returns comma-separated input with ISO-8859-1 fallback.
func DefaultOptions() Options {
	return Options{
		Delimiter:    ',',
		InvalidBytes: Latin1,
	}
}

// Reader yields one RawRecord per data row of a delimited file with a
// header row.
type Reader struct {
	csv    *csv.Reader
	closer io.Closer
	opts   Options
	header []string
}

// Open opens the file at path and reads its header.
func Open(path string, opts Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}

	r, err := NewReader(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader wraps an io.Reader and reads its header row.
func NewReader(in io.Reader, opts Options) (*Reader, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.InvalidBytes == "" {
		opts.InvalidBytes = Latin1
	}

	cr := csv.NewReader(in)
	cr.Comma = opts.Delimiter
	cr.LazyQuotes = true
	// Width is checked against the header per record.
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	raw, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("source is empty: no header row")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	header := make([]string, len(raw))
	for i, name := range raw {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		header[i] = NormalizeColumn(Sanitize(name, opts.InvalidBytes))
	}

	return &Reader{
		csv:    cr,
		opts:   opts,
		header: header,
	}, nil
}

// Header returns the normalized column names.
func (r *Reader) Header() []string {
	return r.header
}

// Next returns the next record. It returns io.EOF when the input is
// exhausted and *etl.MalformedRowError for rows that cannot be split into
// the header's columns; reading may continue after a MalformedRowError.
func (r *Reader) Next() (model.RawRecord, error) {
	fields, err := r.csv.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return model.RawRecord{}, &etl.MalformedRowError{
				Line:   parseErr.StartLine,
				Reason: parseErr.Err.Error(),
			}
		}
		return model.RawRecord{}, err
	}

	line, _ := r.csv.FieldPos(0)
	if len(fields) != len(r.header) {
		return model.RawRecord{}, &etl.MalformedRowError{
			Line:   line,
			Reason: fmt.Sprintf("expected %d fields, got %d", len(r.header), len(fields)),
		}
	}

	rec := model.RawRecord{
		Line:   line,
		Fields: make(map[string]string, len(fields)),
	}
	for i, v := range fields {
		rec.Fields[r.header[i]] = Sanitize(v, r.opts.InvalidBytes)
	}
	return rec, nil
}

// Close releases the underlying file, if Open created it.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

var columnReplacer = strings.NewReplacer(" ", "_", "-", "_", "(", "", ")", "")

// NormalizeColumn converts a source header to its canonical column name,
// e.g. "Order Date (DateOrders)" becomes "order_date_dateorders".
func NormalizeColumn(name string) string {
	return strings.ToLower(columnReplacer.Replace(strings.TrimSpace(name)))
}
