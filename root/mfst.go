package root

import "github.com/gowarcraft/casc/breader"

const (
	minHeaderSize = 12
	maxHeaderSize = 100
)

// parseMFST decodes the modern binary root manifest variant. data is the
// blob with the leading "MFST" magic already stripped.
func parseMFST(data []byte) (*Manifest, error) {
	r := breader.New(data)

	possibleHeaderSize, err := r.Uint32LE()
	if err != nil {
		return nil, err
	}

	var headerSize uint32
	var version uint32 = 1
	if possibleHeaderSize >= minHeaderSize && possibleHeaderSize <= maxHeaderSize {
		headerSize = possibleHeaderSize
		if version, err = r.Uint32LE(); err != nil {
			return nil, err
		}
	} else {
		if err := r.Seek(0); err != nil {
			return nil, err
		}
	}

	totalFileCount, err := r.Uint32LE()
	if err != nil {
		return nil, err
	}
	namedFileCount, err := r.Uint32LE()
	if err != nil {
		return nil, err
	}
	if headerSize > 0 {
		if err := r.Skip(4); err != nil {
			return nil, err
		}
	}

	m := &Manifest{}

	for {
		entries, ok := parseMFSTBlock(r, version, totalFileCount, namedFileCount)
		if !ok {
			break
		}
		m.entries = append(m.entries, entries...)
	}

	return m, nil
}

// parseMFSTBlock parses one block of the MFST variant, returning its
// entries and whether parsing should continue. A structural read failure
// mid-block ends iteration cleanly rather than propagating an error.
func parseMFSTBlock(r *breader.Reader, version, totalFileCount, namedFileCount uint32) ([]RootEntry, bool) {
	if r.EOF() {
		return nil, false
	}

	numRecords, err := r.Uint32LE()
	if err != nil {
		return nil, false
	}

	var contentFlags, locale uint32
	switch version {
	case 2:
		if locale, err = r.Uint32LE(); err != nil {
			return nil, false
		}
		unk1, err := r.Uint32LE()
		if err != nil {
			return nil, false
		}
		unk2, err := r.Uint32LE()
		if err != nil {
			return nil, false
		}
		unk3, err := r.Uint8()
		if err != nil {
			return nil, false
		}
		contentFlags = unk1 | unk2 | (uint32(unk3) << 17)
	default:
		if contentFlags, err = r.Uint32LE(); err != nil {
			return nil, false
		}
		if locale, err = r.Uint32LE(); err != nil {
			return nil, false
		}
	}

	hasNameHashes := !(totalFileCount != namedFileCount && contentFlags&contentFlagNoNameHash != 0)

	deltas := make([]int32, numRecords)
	for i := range deltas {
		v, err := r.Int32LE()
		if err != nil {
			return nil, false
		}
		deltas[i] = v
	}

	cKeys := make([][16]byte, numRecords)
	for i := range cKeys {
		b, err := r.Bytes(16)
		if err != nil {
			return nil, false
		}
		copy(cKeys[i][:], b)
	}

	var nameHashes []uint64
	if hasNameHashes {
		nameHashes = make([]uint64, numRecords)
		for i := range nameHashes {
			v, err := r.Uint64LE()
			if err != nil {
				return nil, false
			}
			nameHashes[i] = v
		}
	}

	localeFlags := decodeLocaleFlags(locale)

	entries := make([]RootEntry, numRecords)
	var current int64
	for i := uint32(0); i < numRecords; i++ {
		if i == 0 {
			current = int64(deltas[0])
		} else {
			current = current + 1 + int64(deltas[i])
		}
		e := RootEntry{
			FileDataID:   current,
			ContentKey:   cKeys[i],
			LocaleFlags:  localeFlags,
			ContentFlags: contentFlags,
		}
		if nameHashes != nil {
			nh := nameHashes[i]
			e.NameHash = &nh
		}
		entries[i] = e
	}

	return entries, true
}
