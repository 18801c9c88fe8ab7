//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?"+sqlitePragmas, SQLiteDSN(""))
	assert.Equal(t, "dw.db?"+sqlitePragmas, SQLiteDSN("dw.db"))
	assert.Equal(t, "file:dw.db?mode=rwc&"+sqlitePragmas, SQLiteDSN("file:dw.db?mode=rwc"))
}

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig()
	assert.Positive(t, cfg.MaxConns)
	assert.LessOrEqual(t, cfg.MinConns, cfg.MaxConns)
}

func TestOpenSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database", "supply_chain_dw.db")

	conn, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer conn.Close()

	assert.FileExists(t, path)

	var fk int
	require.NoError(t, conn.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(ctx, MemoryDSN)
	require.NoError(t, err)
	defer conn.Close()

	_, err = GetAllMetadata(ctx, conn)
	require.Error(t, err, "metadata table should not exist yet")

	_, err = conn.ExecContext(ctx, CreateMetadataTableSQL)
	require.NoError(t, err)

	upsert := UpsertMetadataSQL("?", "?")
	for _, kv := range [][2]string{{"run_id", "a"}, {"rows_loaded", "3"}, {"run_id", "b"}} {
		_, err := conn.ExecContext(ctx, upsert, kv[0], kv[1])
		require.NoError(t, err)
	}

	meta, err := GetAllMetadata(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"run_id": "b", "rows_loaded": "3"}, meta)
}
