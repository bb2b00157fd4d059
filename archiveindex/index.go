// Package archiveindex parses CASC ".index" files: the per-archive table
// mapping an EKey to its byte range within that archive's data blob.
package archiveindex

import "github.com/gowarcraft/casc/breader"

const (
	pageSize  = 4096
	entrySize = 16 + 4 + 4 // eKey + size + offset
	maxSize   = 2 * 1024 * 1024
)

// Entry is one archive-index record: where EKey's bytes live within the
// archive identified by ArchiveHash.
type Entry struct {
	EKey        [16]byte
	Size        uint32
	Offset      uint32
	ArchiveHash [16]byte
	Source      string
}

// Parse decodes the raw bytes of a ".index" file. archiveHash identifies the
// archive these entries belong to; source is an opaque tag ("archive" or
// "patch") carried through to each Entry.
func Parse(data []byte, archiveHash [16]byte, source string) ([]Entry, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	dataLen := len(data)
	if dataLen%pageSize != 0 {
		fullPages := dataLen / pageSize
		dataLen = fullPages * pageSize
	}
	// If dataLen is an exact multiple of pageSize, the footer is
	// ambiguous and the source treats the whole input as data.

	r := breader.New(data[:dataLen])

	var entries []Entry
	for !r.EOF() {
		eKeyBytes, err := r.Bytes(16)
		if err != nil {
			break
		}
		size, err := r.Uint32BE()
		if err != nil {
			break
		}
		offset, err := r.Uint32BE()
		if err != nil {
			break
		}
		if size == 0 || size > maxSize {
			break
		}

		var eKey [16]byte
		copy(eKey[:], eKeyBytes)
		entries = append(entries, Entry{
			EKey:        eKey,
			Size:        size,
			Offset:      offset,
			ArchiveHash: archiveHash,
			Source:      source,
		})
	}

	return entries, nil
}
