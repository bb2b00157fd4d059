// Package encoding parses the CASC encoding table: the CKey→EKey mapping
// blob referenced by a build config's "encoding" field.
package encoding

import "github.com/gowarcraft/casc/breader"

// Entry is one encoding table record: the set of EKeys a CKey can resolve
// to, plus the file's uncompressed size.
type Entry struct {
	CKey     [16]byte
	EKeys    [][16]byte
	FileSize uint64
}

// Table is the parsed CKey→Entry map produced by Parse.
type Table struct {
	byCKey map[[16]byte]Entry
}

// NewTable builds a Table directly from a CKey→Entry map, bypassing Parse.
// Useful for synthesizing a table from another source (e.g. merging two
// parsed tables, or constructing one for a loose-file-only build with no
// encoding blob of its own).
func NewTable(entries map[[16]byte]Entry) *Table {
	return &Table{byCKey: entries}
}

// Len returns the number of distinct CKeys in the table.
func (t *Table) Len() int {
	return len(t.byCKey)
}

// Lookup returns the entry for cKey, if any.
func (t *Table) Lookup(cKey [16]byte) (Entry, bool) {
	e, ok := t.byCKey[cKey]
	return e, ok
}

type header struct {
	version         uint8
	cKeyLength      uint8
	eKeyLength      uint8
	cePageSizeKB    uint16
	especPageSizeKB uint16
	cePageCount     uint32
	especPageCount  uint32
	flags           uint8
	especBlockSize  uint32
}

func parseHeader(r *breader.Reader) (header, error) {
	var h header

	sig, err := r.Bytes(2)
	if err != nil {
		return h, ErrShortHeader
	}
	if string(sig) != "EN" {
		return h, ErrBadSignature
	}

	if h.version, err = r.Uint8(); err != nil {
		return h, ErrShortHeader
	}
	if h.cKeyLength, err = r.Uint8(); err != nil {
		return h, ErrShortHeader
	}
	if h.eKeyLength, err = r.Uint8(); err != nil {
		return h, ErrShortHeader
	}
	if h.cePageSizeKB, err = r.Uint16BE(); err != nil {
		return h, ErrShortHeader
	}
	if h.especPageSizeKB, err = r.Uint16BE(); err != nil {
		return h, ErrShortHeader
	}
	if h.cePageCount, err = r.Uint32BE(); err != nil {
		return h, ErrShortHeader
	}
	if h.especPageCount, err = r.Uint32BE(); err != nil {
		return h, ErrShortHeader
	}
	if h.flags, err = r.Uint8(); err != nil {
		return h, ErrShortHeader
	}
	if h.especBlockSize, err = r.Uint32BE(); err != nil {
		return h, ErrShortHeader
	}
	return h, nil
}

// Parse decodes the fully BLTE-decoded encoding table blob into a Table.
func Parse(data []byte) (*Table, error) {
	r := breader.New(data)

	h, err := parseHeader(r)
	if err != nil {
		return nil, err
	}

	if err := r.Skip(int(h.especBlockSize)); err != nil {
		return nil, err
	}
	pageIndexSize := int(h.cePageCount) * 32
	if err := r.Skip(pageIndexSize); err != nil {
		return nil, err
	}

	t := &Table{byCKey: make(map[[16]byte]Entry, h.cePageCount*8)}

	pageSizeBytes := int(h.cePageSizeKB) * 1024
	dataStart := r.Offset()

	for p := uint32(0); p < h.cePageCount; p++ {
		pageStart := dataStart + int(p)*pageSizeBytes
		pageEnd := pageStart + pageSizeBytes
		if pageEnd > r.Len() {
			pageEnd = r.Len()
		}
		if pageStart >= pageEnd {
			break
		}
		if err := r.Seek(pageStart); err != nil {
			break
		}
		parsePage(r, pageEnd, int(h.cKeyLength), int(h.eKeyLength), t)
	}

	return t, nil
}

func parsePage(r *breader.Reader, pageEnd int, cKeyLen, eKeyLen int, t *Table) {
	for {
		if r.Offset() >= pageEnd {
			return
		}
		keyCount, err := r.Uint8()
		if err != nil || keyCount == 0 {
			return
		}
		fileSize, err := r.Uint40BE()
		if err != nil {
			return
		}
		cKeyBytes, err := r.Bytes(cKeyLen)
		if err != nil {
			return
		}
		var cKey [16]byte
		copy(cKey[:], cKeyBytes)

		eKeys := make([][16]byte, 0, keyCount)
		for i := uint8(0); i < keyCount; i++ {
			eKeyBytes, err := r.Bytes(eKeyLen)
			if err != nil {
				return
			}
			var eKey [16]byte
			copy(eKey[:], eKeyBytes)
			eKeys = append(eKeys, eKey)
		}

		if r.Offset() > pageEnd {
			return
		}

		t.byCKey[cKey] = Entry{CKey: cKey, EKeys: eKeys, FileSize: fileSize}
	}
}
