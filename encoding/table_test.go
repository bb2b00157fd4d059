package encoding

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildTable assembles a minimal encoding blob: a 22-byte header (no espec
// data, cePageCount pages each cePageSizeKB KiB), a zeroed 32-byte page-index
// entry per page (skipped by Parse), followed by the raw page bytes supplied
// by the caller (already padded to page size).
func buildTable(cePageSizeKB uint16, pages [][]byte) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("EN")
	buf.WriteByte(1)  // version
	buf.WriteByte(16) // cKeyLength
	buf.WriteByte(16) // eKeyLength
	binary.Write(buf, binary.BigEndian, cePageSizeKB)
	binary.Write(buf, binary.BigEndian, uint16(0)) // especPageSizeKB
	binary.Write(buf, binary.BigEndian, uint32(len(pages)))
	binary.Write(buf, binary.BigEndian, uint32(0)) // especPageCount
	buf.WriteByte(0)                               // flags
	binary.Write(buf, binary.BigEndian, uint32(0)) // especBlockSize
	buf.Write(make([]byte, 32*len(pages)))         // page index

	for _, p := range pages {
		buf.Write(p)
	}
	return buf.Bytes()
}

func buildPage(pageSize int, entries [][3]interface{}) []byte {
	buf := new(bytes.Buffer)
	for _, e := range entries {
		keyCount := e[0].(int)
		fileSize := e[1].(uint64)
		cKey := e[2].([16]byte)
		buf.WriteByte(byte(keyCount))
		var sz [5]byte
		for i := 4; i >= 0; i-- {
			sz[i] = byte(fileSize)
			fileSize >>= 8
		}
		buf.Write(sz[:])
		buf.Write(cKey[:])
		for i := 0; i < keyCount; i++ {
			var eKey [16]byte
			eKey[0] = byte(i + 1)
			buf.Write(eKey[:])
		}
	}
	padded := make([]byte, pageSize)
	copy(padded, buf.Bytes())
	return padded
}

func TestParseSinglePageSingleEntry(t *testing.T) {
	var cKey [16]byte
	cKey[0] = 0xAB

	page := buildPage(1024, [][3]interface{}{
		{1, uint64(12345), cKey},
	})
	data := buildTable(1, [][]byte{page})

	table, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	entry, ok := table.Lookup(cKey)
	require.True(t, ok)
	require.Equal(t, uint64(12345), entry.FileSize)
	require.Len(t, entry.EKeys, 1)
}

func TestParseMultiPageLastWins(t *testing.T) {
	var cKey [16]byte
	cKey[0] = 0x01

	page1 := buildPage(1024, [][3]interface{}{{1, uint64(100), cKey}})
	page2 := buildPage(1024, [][3]interface{}{{2, uint64(200), cKey}})
	data := buildTable(1, [][]byte{page1, page2})

	table, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	entry, ok := table.Lookup(cKey)
	require.True(t, ok)
	require.Equal(t, uint64(200), entry.FileSize)
	require.Len(t, entry.EKeys, 2)
}

func TestParseStopsOnZeroKeyCount(t *testing.T) {
	var cKey1, cKey2 [16]byte
	cKey1[0], cKey2[0] = 0x01, 0x02

	buf := new(bytes.Buffer)
	buf.Write(buildPage(512, [][3]interface{}{{1, uint64(1), cKey1}})[:22])
	padded := make([]byte, 1024)
	copy(padded, buf.Bytes())
	data := buildTable(1, [][]byte{padded})

	table, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	_, ok := table.Lookup(cKey2)
	require.False(t, ok)
}

func TestParseBadSignature(t *testing.T) {
	_, err := Parse([]byte("XX0000000000000000000000"))
	require.ErrorIs(t, err, ErrBadSignature)
}
