package blte

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildHeader assembles a minimal BLTE header: magic, headerSize, format,
// blockCount, then one entry per block. headerSize is computed from the
// actual entry table length, matching the field's documented meaning (the
// byte offset where block payloads begin).
func buildHeader(format byte, entries [][2]uint32) []byte {
	entrySize := 24
	if format == 0x10 {
		entrySize = 40
	}
	headerSize := uint32(12 + entrySize*len(entries))

	buf := new(bytes.Buffer)
	buf.WriteString("BLTE")
	binary.Write(buf, binary.BigEndian, headerSize)
	buf.WriteByte(format)
	buf.WriteByte(byte(len(entries) >> 16))
	buf.WriteByte(byte(len(entries) >> 8))
	buf.WriteByte(byte(len(entries)))
	for _, e := range entries {
		binary.Write(buf, binary.BigEndian, e[0]) // compressedSize
		binary.Write(buf, binary.BigEndian, e[1]) // decompressedSize
		buf.Write(make([]byte, 16))               // hash, unchecked here
		if format == 0x10 {
			buf.Write(make([]byte, 16)) // uncompressedHash, unchecked here
		}
	}
	return buf.Bytes()
}

func TestDecodeSingleUncompressedBlock(t *testing.T) {
	payload := []byte("hello")
	header := buildHeader(0x0F, [][2]uint32{{uint32(1 + len(payload)), uint32(len(payload))}})

	data := append(header, 'N')
	data = append(data, payload...)

	out, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, "hello", string(out))
}

func TestDecodeUnknownCodec(t *testing.T) {
	header := buildHeader(0x0F, [][2]uint32{{2, 1}})
	data := append(header, 'X', 0x00)

	_, err := Decode(data)
	var unknown *UnknownCodecError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, byte('X'), unknown.Tag)
}

func TestDecodeZlibBlock(t *testing.T) {
	want := []byte("the quick brown fox jumps over the lazy dog")
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write(want)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	header := buildHeader(0x0F, [][2]uint32{{uint32(1 + compressed.Len()), uint32(len(want))}})
	data := append(header, 'Z')
	data = append(data, compressed.Bytes()...)

	out, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, want, out)
}

func TestDecodeMultiBlockConcatenates(t *testing.T) {
	a, b := []byte("foo"), []byte("barbaz")
	header := buildHeader(0x0F, [][2]uint32{
		{uint32(1 + len(a)), uint32(len(a))},
		{uint32(1 + len(b)), uint32(len(b))},
	})
	data := append(header, 'N')
	data = append(data, a...)
	data = append(data, 'N')
	data = append(data, b...)

	out, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, "foobarbaz", string(out))
}

func TestDecodeRejectsEncrypted(t *testing.T) {
	header := buildHeader(0x0F, [][2]uint32{{2, 1}})
	data := append(header, 'E', 0x00)

	_, err := Decode(data)
	require.ErrorIs(t, err, ErrUnsupportedEncryption)
}

func TestDecodeBadMagic(t *testing.T) {
	_, err := Decode([]byte("NOPE0000"))
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestDecodeRecursiveNested(t *testing.T) {
	inner := []byte("nested payload")
	innerHeader := buildHeader(0x0F, [][2]uint32{{uint32(1 + len(inner)), uint32(len(inner))}})
	innerBLTE := append(innerHeader, 'N')
	innerBLTE = append(innerBLTE, inner...)

	outerHeader := buildHeader(0x0F, [][2]uint32{{uint32(1 + len(innerBLTE)), uint32(len(inner))}})
	outerBLTE := append(outerHeader, 'F')
	outerBLTE = append(outerBLTE, innerBLTE...)

	out, err := Decode(outerBLTE)
	require.NoError(t, err)
	require.Equal(t, "nested payload", string(out))
}

func TestDecodeRecursionLimit(t *testing.T) {
	data := []byte("payload")
	for i := 0; i <= maxRecursionDepth+1; i++ {
		h := buildHeader(0x0F, [][2]uint32{{uint32(1 + len(data)), uint32(len(data))}})
		data = append(append(h, 'F'), data...)
	}

	_, err := Decode(data)
	require.ErrorIs(t, err, ErrRecursionLimit)
}

func TestDecodeFormat0x10UncompressedHash(t *testing.T) {
	payload := []byte("hi")
	header := buildHeader(0x10, [][2]uint32{{uint32(1 + len(payload)), uint32(len(payload))}})
	data := append(header, 'N')
	data = append(data, payload...)

	out, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, "hi", string(out))
}
