//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// MetadataTable holds key/value information about the last load.
const MetadataTable = "etl_metadata"

// CreateMetadataTableSQL creates the metadata table.
const CreateMetadataTableSQL = `
CREATE TABLE etl_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// UpsertMetadataSQL returns the statement that inserts or replaces one
// metadata entry, using the given bind placeholders.
func UpsertMetadataSQL(keyParam, valueParam string) string {
	return fmt.Sprintf(`
        INSERT INTO etl_metadata (key, value) VALUES (%s, %s)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
    `, keyParam, valueParam)
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, conn *sql.DB) (map[string]string, error) {
	rows, err := conn.QueryContext(ctx, `SELECT key, value FROM etl_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}
