package blte

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// decodeZlib inflates a 'Z' chunk. decompressedSize sizes the output buffer;
// it is not trusted beyond that, the actual length is checked by the caller.
func decodeZlib(payload []byte, decompressedSize int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, 0, decompressedSize)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, zr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
