//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.HasPrefix(info, "pgedge-scetl "+Version) {
		t.Errorf("unexpected version info: %s", info)
	}
	if Short() != Version {
		t.Errorf("Short() = %s, want %s", Short(), Version)
	}
}
