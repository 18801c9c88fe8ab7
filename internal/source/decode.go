//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package source

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// InvalidBytePolicy selects what happens to bytes that are not part of a
// valid UTF-8 sequence.
type InvalidBytePolicy string

const (
	// Latin1 decodes each invalid byte as its ISO-8859-1 character.
	Latin1 InvalidBytePolicy = "latin1"
	// Replace substitutes U+FFFD for each invalid byte.
	Replace InvalidBytePolicy = "replace"
	// Drop removes each invalid byte.
	Drop InvalidBytePolicy = "drop"
)

// ParsePolicy converts a configuration value to an InvalidBytePolicy.
func ParsePolicy(s string) (InvalidBytePolicy, error) {
	switch p := InvalidBytePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case Latin1, Replace, Drop:
		return p, nil
	case "":
		return Latin1, nil
	default:
		return "", fmt.Errorf("unknown invalid byte policy: %s", s)
	}
}

// Sanitize returns s with every invalid UTF-8 byte handled according to the
// policy. Valid UTF-8 is returned unchanged.
func Sanitize(s string, policy InvalidBytePolicy) string {
	if utf8.ValidString(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			switch policy {
			case Replace:
				b.WriteRune(utf8.RuneError)
			case Drop:
			default:
				b.WriteRune(charmap.ISO8859_1.DecodeByte(s[i]))
			}
			i++
			continue
		}
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}
