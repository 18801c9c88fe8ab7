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
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/pgEdge/pgedge-scetl/internal/db"
	"github.com/pgEdge/pgedge-scetl/internal/etl"
	"github.com/pgEdge/pgedge-scetl/internal/model"
)

// maxRowsPerStatement bounds a single multi-row INSERT so the number of bind
// variables stays well below SQLite's limit.
const maxRowsPerStatement = 500

// SQLStore is a warehouse reached through database/sql. It backs the SQLite
// driver.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(conn *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: conn, dialect: dialect}
}

// OpenSQLite opens the SQLite warehouse at path.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	conn, err := db.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewSQLStore(conn, SQLiteDialect), nil
}

// Begin starts the load transaction.
func (s *SQLStore) Begin(ctx context.Context) (etl.LoadTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx, dialect: s.dialect}, nil
}

// DB returns the database handle for read-only queries.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect of the store.
func (s *SQLStore) Dialect() Dialect {
	return s.dialect
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type sqlTx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *sqlTx) CreateSchema(ctx context.Context) error {
	stmts := append(t.dialect.DropStatements(), t.dialect.CreateStatements()...)
	for _, stmt := range stmts {
		if _, err := t.tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (t *sqlTx) InsertDimensionBatch(ctx context.Context, dim model.Dimension, rows [][]any) error {
	return t.insert(ctx, dim.Table(), dim.Columns(), rows)
}

func (t *sqlTx) InsertFactBatch(ctx context.Context, facts []model.OrderLineItem) error {
	rows := make([][]any, len(facts))
	for i, f := range facts {
		rows[i] = f.Values()
	}
	return t.insert(ctx, model.TableFacts, model.FactColumns(), rows)
}

func (t *sqlTx) insert(ctx context.Context, table string, columns []string, rows [][]any) error {
	for start := 0; start < len(rows); start += maxRowsPerStatement {
		chunk := rows[start:min(start+maxRowsPerStatement, len(rows))]

		args := make([]any, 0, len(chunk)*len(columns))
		for _, r := range chunk {
			if len(r) != len(columns) {
				return fmt.Errorf("%s: row has %d values, want %d", table, len(r), len(columns))
			}
			args = append(args, r...)
		}

		query := t.dialect.insertSQL(table, columns, len(chunk))
		if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
			return sqliteError(table, err)
		}
	}
	return nil
}

func (t *sqlTx) SaveMetadata(ctx context.Context, metadata map[string]string) error {
	query := db.UpsertMetadataSQL(t.dialect.Placeholder(1), t.dialect.Placeholder(2))
	for _, key := range sortedKeys(metadata) {
		if _, err := t.tx.ExecContext(ctx, query, key, metadata[key]); err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}
	return nil
}

func (t *sqlTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// sqliteError maps SQLite constraint failures to ConstraintViolationError.
func sqliteError(table string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return &etl.ConstraintViolationError{Table: table, Constraint: constraintName(err), Err: err}
	}
	if strings.Contains(err.Error(), "constraint failed") {
		return &etl.ConstraintViolationError{Table: table, Constraint: constraintName(err), Err: err}
	}
	return err
}

// sqliteConstraintKinds are the prefixes SQLite puts before
// "constraint failed" in its messages.
var sqliteConstraintKinds = []string{"FOREIGN KEY", "PRIMARY KEY", "UNIQUE", "NOT NULL", "CHECK"}

// constraintName describes the failed constraint from a SQLite message such
// as "UNIQUE constraint failed: dim_customers.customer_id", yielding
// "UNIQUE dim_customers.customer_id".
func constraintName(err error) string {
	msg := err.Error()
	for _, kind := range sqliteConstraintKinds {
		marker := kind + " constraint failed"
		i := strings.Index(msg, marker)
		if i < 0 {
			continue
		}
		rest := msg[i+len(marker):]
		if !strings.HasPrefix(rest, ": ") {
			return kind
		}
		target := rest[2:]
		if j := strings.Index(target, " ("); j >= 0 {
			target = target[:j]
		}
		return kind + " " + target
	}
	return ""
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
