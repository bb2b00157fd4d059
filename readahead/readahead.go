// Package readahead wraps a file in a page-aligned buffered reader, sized
// for the sequential scans the archive index and encoding-table parsers do
// once the underlying data has been downloaded or memory-mapped locally.
package readahead

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

const (
	KiB = 1024
	MiB = 1024 * KiB
)

// DefaultChunkSize is large enough to amortize the page-header and page-index
// scans archiveindex/Parse and encoding/Parse do before reaching entry data.
const DefaultChunkSize = 4 * MiB

// CachingReader buffers reads from an underlying file in chunkSize pages.
type CachingReader struct {
	file      io.ReadCloser
	buffer    *bufio.Reader
	chunkSize int
}

// NewCachingReader opens filePath and wraps it in a CachingReader.
func NewCachingReader(filePath string, chunkSize int) (*CachingReader, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	chunkSize = alignValueToPageSize(chunkSize)
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	return &CachingReader{file: file, buffer: bufio.NewReaderSize(file, chunkSize), chunkSize: chunkSize}, nil
}

// NewCachingReaderFromReader wraps an already-open reader.
func NewCachingReaderFromReader(file io.ReadCloser, chunkSize int) *CachingReader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	chunkSize = alignValueToPageSize(chunkSize)
	return &CachingReader{file: file, buffer: bufio.NewReaderSize(file, chunkSize), chunkSize: chunkSize}
}

func alignValueToPageSize(value int) int {
	pageSize := os.Getpagesize()
	return (value + pageSize - 1) &^ (pageSize - 1)
}

// Read implements io.Reader.
func (cr *CachingReader) Read(p []byte) (int, error) {
	if cr.file == nil {
		return 0, fmt.Errorf("file not open")
	}
	if len(p) == 0 {
		return 0, nil
	}
	return cr.buffer.Read(p)
}

// Close implements io.Closer.
func (cr *CachingReader) Close() error {
	return cr.file.Close()
}
