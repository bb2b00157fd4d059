// Package blte decodes the BLTE container format: the recursive, chunked,
// multi-codec compression envelope that wraps every CASC content blob.
package blte

import (
	"time"

	"github.com/gowarcraft/casc/breader"
	"github.com/gowarcraft/casc/metrics"
	"github.com/valyala/bytebufferpool"
)

const maxRecursionDepth = 8

// Decode parses data as a BLTE container and returns the concatenated
// decompressed payload of every block, recursing through nested 'F' blocks
// up to maxRecursionDepth.
func Decode(data []byte) ([]byte, error) {
	return decode(data, 0)
}

func decode(data []byte, depth int) ([]byte, error) {
	if depth > maxRecursionDepth {
		return nil, ErrRecursionLimit
	}

	format, headerSize, blocks, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	_ = format

	out := bytebufferpool.Get()
	defer bytebufferpool.Put(out)

	payloadOff := int(headerSize)
	for i, blk := range blocks {
		start := payloadOff
		for j := 0; j < i; j++ {
			start += int(blocks[j].CompressedSize)
		}
		end := start + int(blk.CompressedSize)
		if end > len(data) || start > end {
			return nil, breader.ErrOutOfRange
		}
		chunk := data[start:end]
		if len(chunk) == 0 {
			return nil, ErrBadHeader
		}

		tag := chunk[0]
		payload := chunk[1:]

		decoded, err := decodeChunk(tag, payload, int(blk.DecompressedSize), depth)
		if err != nil {
			return nil, err
		}
		if len(decoded) != int(blk.DecompressedSize) {
			return nil, ErrSize
		}
		out.Write(decoded)
	}

	result := make([]byte, out.Len())
	copy(result, out.Bytes())
	return result, nil
}

func decodeChunk(tag byte, payload []byte, decompressedSize int, depth int) ([]byte, error) {
	switch tag {
	case 'N':
		return payload, nil
	case 'Z':
		start := time.Now()
		out, err := decodeZlib(payload, decompressedSize)
		metrics.BLTEDecodeHistogram.WithLabelValues("zlib").Observe(time.Since(start).Seconds())
		return out, err
	case '4':
		start := time.Now()
		out, err := decodeLZ4(payload, decompressedSize)
		metrics.BLTEDecodeHistogram.WithLabelValues("lz4").Observe(time.Since(start).Seconds())
		return out, err
	case 'F':
		return decode(payload, depth+1)
	case 'E':
		return nil, ErrUnsupportedEncryption
	default:
		return nil, &UnknownCodecError{Tag: tag}
	}
}

// Block is the header-declared metadata for a single BLTE chunk.
type Block struct {
	CompressedSize   uint32
	DecompressedSize uint32
	Hash             [16]byte
	UncompressedHash *[16]byte
}

// parseHeader reads the BLTE header and returns the format byte, the
// absolute byte offset where block payloads begin, and the ordered list of
// block descriptors.
func parseHeader(data []byte) (format byte, headerSize uint32, blocks []Block, err error) {
	r := breader.New(data)

	magic, err := r.Bytes(4)
	if err != nil {
		return 0, 0, nil, err
	}
	if string(magic) != "BLTE" {
		return 0, 0, nil, ErrBadMagic
	}

	headerSize32, err := r.Uint32BE()
	if err != nil {
		return 0, 0, nil, err
	}
	if headerSize32 == 0 {
		return 0, 0, nil, ErrBadHeader
	}

	format, err = r.Uint8()
	if err != nil {
		return 0, 0, nil, err
	}
	if format != 0x0F && format != 0x10 {
		return 0, 0, nil, ErrBadFormat
	}

	blockCount, err := r.Uint24BE()
	if err != nil {
		return 0, 0, nil, err
	}
	if blockCount == 0 {
		return 0, 0, nil, ErrBadHeader
	}

	blocks = make([]Block, 0, blockCount)
	for i := uint32(0); i < blockCount; i++ {
		compressedSize, err := r.Uint32BE()
		if err != nil {
			return 0, 0, nil, err
		}
		decompressedSize, err := r.Uint32BE()
		if err != nil {
			return 0, 0, nil, err
		}
		hashBytes, err := r.Bytes(16)
		if err != nil {
			return 0, 0, nil, err
		}
		blk := Block{CompressedSize: compressedSize, DecompressedSize: decompressedSize}
		copy(blk.Hash[:], hashBytes)

		if format == 0x10 {
			uhBytes, err := r.Bytes(16)
			if err != nil {
				return 0, 0, nil, err
			}
			var uh [16]byte
			copy(uh[:], uhBytes)
			blk.UncompressedHash = &uh
		}
		blocks = append(blocks, blk)
	}

	return format, headerSize32, blocks, nil
}
