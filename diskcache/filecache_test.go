package diskcache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileCacheGetPut(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Put("config_deadbeef", []byte("root = aabbccdd\n"))
	v, ok := c.Get("config_deadbeef")
	require.True(t, ok)
	require.Equal(t, []byte("root = aabbccdd\n"), v)
}

func TestFileCacheDistinctKeysDontCollide(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	c.Put("a", []byte("1"))
	c.Put("a.index", []byte("2"))

	v1, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, []byte("1"), v1)

	v2, ok := c.Get("a.index")
	require.True(t, ok)
	require.Equal(t, []byte("2"), v2)
}
