// Package root parses the CASC root manifest: the table mapping product
// file identifiers and/or paths to content keys. Two wire variants exist —
// the modern binary "MFST" layout and the pipe-delimited text layout used by
// Warcraft III — both producing the same RootEntry shape.
package root

import (
	"bytes"
	"errors"
	"strings"
)

// ErrUnknownVariant is returned when the manifest's magic matches neither
// known variant.
var ErrUnknownVariant = errors.New("root: unknown manifest variant")

// RootEntry is one record of the root manifest: a content key plus the
// locale/flag/path metadata needed to select it.
type RootEntry struct {
	FileDataID     int64
	ContentKey     [16]byte
	NameHash       *uint64
	LocaleFlags    LocaleFlags
	ContentFlags   uint32
	NormalizedPath *string
	Scopes         []string
}

// Manifest is the parsed, queryable sequence of RootEntry records.
type Manifest struct {
	entries []RootEntry
}

// Len returns the number of entries in the manifest.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Entries returns the manifest's entries in parse order.
func (m *Manifest) Entries() []RootEntry {
	return m.entries
}

// ByCKey returns the first entry whose ContentKey equals cKey.
func (m *Manifest) ByCKey(cKey [16]byte) (RootEntry, bool) {
	for _, e := range m.entries {
		if e.ContentKey == cKey {
			return e, true
		}
	}
	return RootEntry{}, false
}

// ByPath returns every entry whose normalized path contains the
// (normalized) query as a substring.
func (m *Manifest) ByPath(path string) []RootEntry {
	query := normalizePath(path)
	var out []RootEntry
	for _, e := range m.entries {
		if e.NormalizedPath == nil {
			continue
		}
		if strings.Contains(*e.NormalizedPath, query) {
			out = append(out, e)
		}
	}
	return out
}

func normalizePath(path string) string {
	lower := strings.ToLower(path)
	return strings.ReplaceAll(lower, `\`, "/")
}

// Parse decodes the fully BLTE-decoded root manifest blob, dispatching on
// the leading magic to the MFST or War3 variant.
func Parse(data []byte) (*Manifest, error) {
	switch {
	case bytes.HasPrefix(data, []byte("MFST")):
		return parseMFST(data[4:])
	case bytes.HasPrefix(data, []byte("War3")):
		return parseWar3(data[4:])
	default:
		return nil, ErrUnknownVariant
	}
}
