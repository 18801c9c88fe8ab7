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
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pgEdge/pgedge-scetl/internal/db"
	"github.com/pgEdge/pgedge-scetl/internal/etl"
	"github.com/pgEdge/pgedge-scetl/internal/logging"
	"github.com/pgEdge/pgedge-scetl/internal/model"
)

// integrityViolationClass is the SQLSTATE class for constraint violations.
const integrityViolationClass = "23"

// Postgres is a PostgreSQL warehouse. Loads use COPY inside a single
// transaction.
type Postgres struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

// OpenPostgres connects to the PostgreSQL warehouse described by connString.
func OpenPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := db.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	return NewPostgres(pool), nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{
		pool: pool,
		db:   stdlib.OpenDBFromPool(pool),
	}
}

// Begin starts the load transaction.
func (p *Postgres) Begin(ctx context.Context) (etl.LoadTx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

// DB returns a database/sql view of the pool for read-only queries.
func (p *Postgres) DB() *sql.DB {
	return p.db
}

// Dialect returns PostgresDialect.
func (p *Postgres) Dialect() Dialect {
	return PostgresDialect
}

// Close closes the pool.
func (p *Postgres) Close() error {
	err := p.db.Close()
	p.pool.Close()
	return err
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) CreateSchema(ctx context.Context) error {
	stmts := append(PostgresDialect.DropStatements(), PostgresDialect.CreateStatements()...)
	for _, stmt := range stmts {
		if _, err := t.tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTx) InsertDimensionBatch(ctx context.Context, dim model.Dimension, rows [][]any) error {
	return t.copy(ctx, dim.Table(), dim.Columns(), rows)
}

func (t *pgTx) InsertFactBatch(ctx context.Context, facts []model.OrderLineItem) error {
	rows := make([][]any, len(facts))
	for i, f := range facts {
		rows[i] = f.Values()
	}
	return t.copy(ctx, model.TableFacts, model.FactColumns(), rows)
}

func (t *pgTx) copy(ctx context.Context, table string, columns []string, rows [][]any) error {
	n, err := t.tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return pgError(table, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("%s: copied %d rows, expected %d", table, n, len(rows))
	}

	logging.Debug().
		Str("table", table).
		Int64("rows", n).
		Msg("Copied batch")
	return nil
}

func (t *pgTx) SaveMetadata(ctx context.Context, metadata map[string]string) error {
	query := db.UpsertMetadataSQL("$1", "$2")
	for _, key := range sortedKeys(metadata) {
		if _, err := t.tx.Exec(ctx, query, key, metadata[key]); err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}
	return nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	return pgError("", t.tx.Commit(ctx))
}

func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// pgError maps SQLSTATE class 23 errors to ConstraintViolationError.
func pgError(table string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, integrityViolationClass) {
		if pgErr.TableName != "" {
			table = pgErr.TableName
		}
		return &etl.ConstraintViolationError{
			Table:      table,
			Constraint: pgErr.ConstraintName,
			Err:        err,
		}
	}
	return err
}
