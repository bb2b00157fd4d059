package diskcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemCacheGetPut(t *testing.T) {
	c := NewMemCache(time.Minute)
	defer c.Close()

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Put("hello", []byte("world"))
	v, ok := c.Get("hello")
	require.True(t, ok)
	require.Equal(t, []byte("world"), v)
}

func TestNoopCacheAlwaysMisses(t *testing.T) {
	c := NewNoopCache()
	c.Put("k", []byte("v"))
	_, ok := c.Get("k")
	require.False(t, ok)
}
