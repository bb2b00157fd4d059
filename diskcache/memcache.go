package diskcache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemCache is a Cache backed by an in-memory TTL cache. It is the default
// Cache a resolver.Client uses when none is supplied.
type MemCache struct {
	c *ttlcache.Cache[string, []byte]
}

// NewMemCache creates a MemCache whose entries expire after ttl. A ttl of 0
// means entries never expire.
func NewMemCache(ttl time.Duration) *MemCache {
	opts := []ttlcache.Option[string, []byte]{}
	if ttl > 0 {
		opts = append(opts, ttlcache.WithTTL[string, []byte](ttl))
	}
	c := ttlcache.New(opts...)
	go c.Start()
	return &MemCache{c: c}
}

// Get implements Cache.
func (m *MemCache) Get(key string) ([]byte, bool) {
	item := m.c.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Put implements Cache.
func (m *MemCache) Put(key string, value []byte) {
	m.c.Set(key, value, ttlcache.DefaultTTL)
}

// Close stops the cache's background expiration loop.
func (m *MemCache) Close() {
	m.c.Stop()
}
