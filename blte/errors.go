package blte

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic is returned when the input does not start with "BLTE".
	ErrBadMagic = errors.New("blte: bad magic")
	// ErrBadHeader is returned when the header's declared sizes are unusable
	// (headerSize == 0, blockCount == 0, or an empty block). A header cut
	// short by the end of the input yields breader.ErrOutOfRange instead.
	ErrBadHeader = errors.New("blte: bad header")
	// ErrBadFormat is returned when the format byte is neither 0x0F nor 0x10.
	ErrBadFormat = errors.New("blte: unsupported format byte")
	// ErrUnsupportedEncryption is returned for the 'E' (encrypted) codec,
	// which this client deliberately does not implement.
	ErrUnsupportedEncryption = errors.New("blte: encrypted chunks are not supported")
	// ErrRecursionLimit guards against adversarial or malformed nested 'F'
	// blocks recursing without bound.
	ErrRecursionLimit = errors.New("blte: recursive BLTE nesting limit exceeded")
	// ErrSize is returned when a block's decompressed length does not
	// match its declared size.
	ErrSize = errors.New("blte: decompressed size mismatch")
)

// UnknownCodecError is returned when a block's codec tag is not one of
// N, Z, 4, F, E.
type UnknownCodecError struct {
	Tag byte
}

func (e *UnknownCodecError) Error() string {
	return fmt.Sprintf("blte: unknown codec %q (0x%02x)", rune(e.Tag), e.Tag)
}
