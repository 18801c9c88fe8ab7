//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse persists the star schema to PostgreSQL or SQLite.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgEdge/pgedge-scetl/internal/etl"
)

// Warehouse is a loadable star-schema store that can also be queried.
type Warehouse interface {
	etl.Loader

	// DB returns a handle for read-only analytical queries.
	DB() *sql.DB

	// Dialect returns the SQL dialect of the backend.
	Dialect() Dialect

	Close() error
}

// Open connects to the warehouse for the given driver.
func Open(ctx context.Context, driver, dsn string) (Warehouse, error) {
	switch driver {
	case PostgresDialect.Name:
		pg, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case SQLiteDialect.Name:
		store, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown warehouse driver: %s", driver)
	}
}

// DialectFor returns the dialect for driver.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case PostgresDialect.Name:
		return PostgresDialect, nil
	case SQLiteDialect.Name:
		return SQLiteDialect, nil
	default:
		return Dialect{}, fmt.Errorf("unknown warehouse driver: %s", driver)
	}
}
