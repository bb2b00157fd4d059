package archiveindex

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeEntry(buf *bytes.Buffer, eKey [16]byte, size, offset uint32) {
	buf.Write(eKey[:])
	binary.Write(buf, binary.BigEndian, size)
	binary.Write(buf, binary.BigEndian, offset)
}

var archiveHash = [16]byte{0x01, 0x02}

func TestParseSinglePageWithFooter(t *testing.T) {
	buf := new(bytes.Buffer)
	var k1, k2 [16]byte
	k1[0], k2[0] = 0xAA, 0xBB
	writeEntry(buf, k1, 100, 0)
	writeEntry(buf, k2, 200, 100)

	dataPage := make([]byte, 4096)
	copy(dataPage, buf.Bytes())
	footer := make([]byte, 100) // not a multiple of 4096 overall

	data := append(dataPage, footer...)

	entries, err := Parse(data, archiveHash, "archive")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, k1, entries[0].EKey)
	require.Equal(t, uint32(100), entries[0].Size)
	require.Equal(t, archiveHash, entries[0].ArchiveHash)
	require.Equal(t, "archive", entries[0].Source)
}

func TestParseStopsAtZeroPadding(t *testing.T) {
	buf := new(bytes.Buffer)
	var k1 [16]byte
	k1[0] = 0x01
	writeEntry(buf, k1, 50, 0)

	dataPage := make([]byte, 4096) // rest is zero padding
	copy(dataPage, buf.Bytes())
	footer := make([]byte, 50)
	data := append(dataPage, footer...)

	entries, err := Parse(data, archiveHash, "archive")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestParseRejectsOversizedEntry(t *testing.T) {
	buf := new(bytes.Buffer)
	var k1 [16]byte
	k1[0] = 0x01
	writeEntry(buf, k1, 3*1024*1024, 0) // exceeds 2 MiB

	dataPage := make([]byte, 4096)
	copy(dataPage, buf.Bytes())
	footer := make([]byte, 50)
	data := append(dataPage, footer...)

	entries, err := Parse(data, archiveHash, "archive")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestParseExactMultipleTreatedAsAllData(t *testing.T) {
	buf := new(bytes.Buffer)
	var k1 [16]byte
	k1[0] = 0x01
	writeEntry(buf, k1, 10, 0)

	data := make([]byte, 4096) // exact multiple: ambiguous, treated as all data
	copy(data, buf.Bytes())

	entries, err := Parse(data, archiveHash, "patch")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "patch", entries[0].Source)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(nil, archiveHash, "archive")
	require.ErrorIs(t, err, ErrEmpty)
}
