package readahead

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCachingReaderReadsFullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	want := []byte("archive index bytes go here")
	require.NoError(t, os.WriteFile(path, want, 0o644))

	r, err := NewCachingReader(path, 4096)
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestAlignValueToPageSize(t *testing.T) {
	pageSize := os.Getpagesize()
	require.Equal(t, pageSize, alignValueToPageSize(1))
	require.Equal(t, pageSize, alignValueToPageSize(pageSize))
	require.Equal(t, 2*pageSize, alignValueToPageSize(pageSize+1))
}
