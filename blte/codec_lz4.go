package blte

import (
	"encoding/binary"

	"github.com/pierrec/lz4/v4"
)

// lz4HeaderSize is the version byte, the 8-byte informational size, and the
// 1-byte informational block-shift that precede the raw LZ4 block.
const lz4HeaderSize = 1 + 8 + 1

// decodeLZ4 inflates a '4' chunk. The version/size/shift fields ahead of the
// raw block are informational only; decompression relies solely on
// decompressedSize.
func decodeLZ4(payload []byte, decompressedSize int) ([]byte, error) {
	if len(payload) < lz4HeaderSize {
		return nil, ErrBadHeader
	}
	version := payload[0]
	if version != 1 {
		return nil, ErrBadFormat
	}
	_ = binary.BigEndian.Uint64(payload[1:9]) // informational size, not trusted
	_ = payload[9]                            // informational block-shift

	block := payload[lz4HeaderSize:]
	out := make([]byte, decompressedSize)
	n, err := lz4.UncompressBlock(block, out)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}
