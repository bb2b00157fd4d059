package diskcache

// NoopCache is a Cache that never stores anything: every Get is a miss.
// Useful for benchmarking or when the caller wants to disable caching
// entirely without changing the resolver's code paths.
type NoopCache struct{}

// NewNoopCache returns a Cache with no storage.
func NewNoopCache() *NoopCache { return &NoopCache{} }

// Get always reports a miss.
func (NoopCache) Get(key string) ([]byte, bool) { return nil, false }

// Put is a no-op.
func (NoopCache) Put(key string, value []byte) {}
