package breader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntegers(t *testing.T) {
	t.Run("uint8 and uint16", func(t *testing.T) {
		r := New([]byte{0x01, 0x00, 0x02, 0x02, 0x00})
		v8, err := r.Uint8()
		require.NoError(t, err)
		require.Equal(t, uint8(1), v8)

		beV, err := r.Uint16BE()
		require.NoError(t, err)
		require.Equal(t, uint16(2), beV)

		leV, err := r.Uint16LE()
		require.NoError(t, err)
		require.Equal(t, uint16(2), leV)
	})

	t.Run("uint24be", func(t *testing.T) {
		r := New([]byte{0x00, 0x00, 0x05})
		v, err := r.Uint24BE()
		require.NoError(t, err)
		require.Equal(t, uint32(5), v)
	})

	t.Run("uint40be", func(t *testing.T) {
		r := New([]byte{0x00, 0x00, 0x00, 0x00, 0x05})
		v, err := r.Uint40BE()
		require.NoError(t, err)
		require.Equal(t, uint64(5), v)
	})

	t.Run("out of range", func(t *testing.T) {
		r := New([]byte{0x01})
		_, err := r.Uint32BE()
		require.ErrorIs(t, err, ErrOutOfRange)
	})
}

func TestBytesAndString(t *testing.T) {
	r := New([]byte{0xaa, 0xbb, 'h', 'i'})
	hexStr, err := r.String(2, Hex)
	require.NoError(t, err)
	require.Equal(t, "aabb", hexStr)

	utfStr, err := r.String(2, UTF8)
	require.NoError(t, err)
	require.Equal(t, "hi", utfStr)
}

func TestBitsMSBFirst(t *testing.T) {
	// 0b10110010, 0b01000000 -> read 4 bits (1011), then 8 bits spanning the
	// byte boundary (0010 0100), leaving 4 bits (0000).
	r := New([]byte{0b10110010, 0b01000000})

	v, err := r.Bits(4)
	require.NoError(t, err)
	require.Equal(t, uint32(0b1011), v)

	v, err = r.Bits(8)
	require.NoError(t, err)
	require.Equal(t, uint32(0b00100100), v)

	v, err = r.Bits(4)
	require.NoError(t, err)
	require.Equal(t, uint32(0), v)
}

func TestByteReadAlignsPartialBits(t *testing.T) {
	r := New([]byte{0xFF, 0x42})
	_, err := r.Bits(3)
	require.NoError(t, err)

	// A byte-oriented read must skip to the next whole byte.
	v, err := r.Uint8()
	require.NoError(t, err)
	require.Equal(t, uint8(0x42), v)
}

func TestSeekSkipRemainingEOF(t *testing.T) {
	r := New([]byte{1, 2, 3, 4})
	require.Equal(t, 4, r.Remaining())
	require.False(t, r.EOF())

	require.NoError(t, r.Skip(2))
	require.Equal(t, 2, r.Remaining())

	require.NoError(t, r.Seek(4))
	require.True(t, r.EOF())

	require.ErrorIs(t, r.Seek(-1), ErrOutOfRange)
	require.ErrorIs(t, r.Seek(5), ErrOutOfRange)
}
