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
	"strings"
)

// SchemaViolationError reports required source columns that are absent from
// the header. It is fatal: the input does not match the expected layout.
type SchemaViolationError struct {
	Missing []string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("source is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// MalformedRowError reports a single source row that cannot be normalized.
// The row is dropped and the run continues.
type MalformedRowError struct {
	Line   int
	Column string
	Value  string
	Reason string
}

func (e *MalformedRowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: column %s: %s (value %q)", e.Line, e.Column, e.Reason, e.Value)
}

// DuplicateKeyError reports a fact row whose order_item_id was already
// assembled earlier in the run. The later row is dropped.
type DuplicateKeyError struct {
	Line int
	Key  int64
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("line %d: duplicate order_item_id %d", e.Line, e.Key)
}

// ConstraintViolationError reports a primary-key, foreign-key or NOT NULL
// violation raised by the warehouse. It aborts the whole load.
type ConstraintViolationError struct {
	Table      string
	Constraint string
	Err        error
}

func (e *ConstraintViolationError) Error() string {
	msg := "constraint violation"
	if e.Table != "" {
		msg += " on " + e.Table
	}
	if e.Constraint != "" {
		msg += " (" + e.Constraint + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConstraintViolationError) Unwrap() error {
	return e.Err
}
