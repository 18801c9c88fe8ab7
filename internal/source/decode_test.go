//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		policy InvalidBytePolicy
		want   string
	}{
		{"latin1 maps 0xE9", "Jos\xe9", Latin1, "José"},
		{"latin1 maps each byte", "S\xe3o Paulo \xbf", Latin1, "São Paulo ¿"},
		{"replace uses U+FFFD", "Jos\xe9", Replace, "Jos\uFFFD"},
		{"drop removes the byte", "Jos\xe9", Drop, "Jos"},
		{"drop keeps valid runes", "Bogot\xe1 é", Drop, "Bogot é"},
		{"valid UTF-8 unchanged under latin1", "José", Latin1, "José"},
		{"valid UTF-8 unchanged under replace", "Zürich", Replace, "Zürich"},
		{"valid UTF-8 unchanged under drop", "東京", Drop, "東京"},
		{"empty", "", Latin1, ""},
		{"truncated multibyte sequence", "caf\xc3", Latin1, "cafÃ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input, tt.policy))
		})
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    InvalidBytePolicy
		wantErr bool
	}{
		{"", Latin1, false},
		{"latin1", Latin1, false},
		{" Replace ", Replace, false},
		{"DROP", Drop, false},
		{"ignore", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePolicy(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
