package diskcache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gowarcraft/casc/readahead"
)

// FileCache is a Cache backed by a local directory: Put writes the blob to
// a file (via a temp-file-then-rename so a concurrent Get never observes a
// partial write), Get reads it back through a readahead.CachingReader sized
// for the archive-index and encoding-table scans that are the common
// consumer of a cached blob this size.
type FileCache struct {
	dir string
}

// NewFileCache creates dir (if needed) and returns a FileCache rooted there.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("diskcache: create cache dir %s: %w", dir, err)
	}
	return &FileCache{dir: dir}, nil
}

// Get implements Cache.
func (f *FileCache) Get(key string) ([]byte, bool) {
	r, err := readahead.NewCachingReader(f.path(key), readahead.DefaultChunkSize)
	if err != nil {
		return nil, false
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put implements Cache.
func (f *FileCache) Put(key string, value []byte) {
	path := f.path(key)
	tmp, err := os.CreateTemp(f.dir, "tmp-*")
	if err != nil {
		return
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
	}
}

// path maps a cache key to a flat filename under the cache directory. Keys
// are hashed rather than used verbatim since they may contain characters
// (e.g. the ".index" suffix's dot is harmless, but this keeps the mapping
// robust to any future key shape).
func (f *FileCache) path(key string) string {
	sum := sha1.Sum([]byte(key))
	return filepath.Join(f.dir, hex.EncodeToString(sum[:]))
}
