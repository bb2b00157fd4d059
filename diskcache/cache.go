// Package diskcache defines the advisory blob-cache contract used by the
// resolver to avoid re-fetching configs, data blobs, and archive indices,
// plus a couple of concrete implementations.
package diskcache

// Cache is the advisory cache collaborator contract: Get returns (nil,
// false) on a miss, never an error — corruption and eviction are the
// implementation's problem, not the caller's.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte)
}
