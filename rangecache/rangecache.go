// Package rangecache implements an in-memory, size-bounded LRU cache of
// byte ranges fetched from a larger remote blob (a CASC archive). Adjacent
// and overlapping ranges are coalesced on insert so that repeated small
// reads against the same archive collapse into fewer, larger cached spans.
package rangecache

import (
	"container/list"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"k8s.io/klog/v2"
)

// Span is a half-open byte interval [Start, End) within a blob.
type Span [2]int64

func (s Span) contains(o Span) bool    { return s[0] <= o[0] && s[1] >= o[1] }
func (s Span) intersects(o Span) bool  { return s[0] < o[1] && s[1] > o[0] }
func (s Span) isAdjacent(o Span) bool  { return s[1] == o[0] || o[1] == s[0] }
func (s Span) validFor(size int64) bool {
	return s[0] >= 0 && s[1] <= size && s[0] <= s[1]
}

type entry struct {
	value    []byte
	lastRead time.Time
}

// Fetcher retrieves the exclusive byte range [off, off+len(p)) of the
// backing blob into p.
type Fetcher func(p []byte, off int64) (n int, err error)

// Cache is an LRU cache of spans backed by Fetcher, bounded by maxBytes of
// retained payload.
type Cache struct {
	mu sync.RWMutex

	name     string
	size     int64
	maxBytes int64
	occupied int64

	fetch Fetcher
	group singleflight.Group

	entries map[Span]entry
	order   *list.List
	elems   map[Span]*list.Element
}

// New creates a Cache over a blob of the given total size. name identifies
// the blob in log output. maxBytes bounds total retained payload; 0 means
// unbounded.
func New(name string, size int64, fetch Fetcher, maxBytes int64) *Cache {
	if fetch == nil {
		panic("rangecache: fetch must not be nil")
	}
	return &Cache{
		name:     name,
		size:     size,
		maxBytes: maxBytes,
		fetch:    fetch,
		entries:  make(map[Span]entry),
		order:    list.New(),
		elems:    make(map[Span]*list.Element),
	}
}

// Size returns the total size of the backing blob.
func (c *Cache) Size() int64 { return c.size }

// Occupied returns the current retained payload size.
func (c *Cache) Occupied() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.occupied
}

// Close discards all cached spans.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.order = nil
	c.elems = nil
	c.occupied = 0
	return nil
}

// StartGC periodically evicts spans untouched for longer than maxAge, until
// ctx is cancelled.
func (c *Cache) StartGC(ctx context.Context, maxAge time.Duration) {
	go func() {
		t := time.NewTicker(maxAge)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				c.evictOlderThan(maxAge)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (c *Cache) evictOlderThan(maxAge time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	var stale []Span
	for s, e := range c.entries {
		if now.Sub(e.lastRead) > maxAge {
			stale = append(stale, s)
		}
	}
	for _, s := range stale {
		c.dropLocked(s)
	}
}

// Get returns the bytes of [start, start+length), serving from cache where
// possible and fetching the remainder via Fetcher. Concurrent Gets against
// the exact same uncached span share a single underlying fetch.
func (c *Cache) Get(ctx context.Context, start, length int64) ([]byte, error) {
	span := Span{start, start + length}
	if !span.validFor(c.size) {
		return nil, fmt.Errorf("rangecache: invalid span [%d,%d) for size %d", span[0], span[1], c.size)
	}

	if v, ok := c.lookup(span); ok {
		return v, nil
	}

	key := fmt.Sprintf("%d:%d", span[0], span[1])
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.lookup(span); ok {
			return v, nil
		}
		buf := make([]byte, length)
		n, err := c.fetch(buf, start)
		if err != nil {
			return nil, err
		}
		if int64(n) != length {
			return nil, fmt.Errorf("rangecache: fetcher returned %d bytes, expected %d", n, length)
		}
		c.insert(span, buf)
		return buf, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// lookup returns an exact or superset cache hit for span.
func (c *Cache) lookup(span Span) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[span]; ok {
		c.touchLocked(span)
		return clone(e.value), true
	}
	for s, e := range c.entries {
		if s.contains(span) {
			c.touchLocked(s)
			off := span[0] - s[0]
			return clone(e.value[off : off+(span[1]-span[0])]), true
		}
	}
	return nil, false
}

func (c *Cache) touchLocked(span Span) {
	if elem, ok := c.elems[span]; ok {
		c.order.MoveToFront(elem)
	}
	e := c.entries[span]
	e.lastRead = time.Now()
	c.entries[span] = e
}

// insert merges value at span into the cache, coalescing with any
// intersecting or adjacent spans, then evicts down to maxBytes.
//
// Coalescing works on whole spans, not individual bytes: the common caller
// (resolver) inserts a single span spanning an entire archive, so a
// byte-indexed merge would allocate and sort one map entry per byte of a
// blob that can run into the hundreds of megabytes.
func (c *Cache) insert(span Span, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	type piece struct {
		span  Span
		value []byte
	}
	pieces := []piece{{span, value}}

	var toDrop []Span
	for s, e := range c.entries {
		if !s.intersects(span) && !s.isAdjacent(span) {
			continue
		}
		toDrop = append(toDrop, s)
		pieces = append(pieces, piece{s, e.value})
	}
	for _, s := range toDrop {
		c.dropLocked(s)
	}

	sort.Slice(pieces, func(i, j int) bool { return pieces[i].span[0] < pieces[j].span[0] })

	segStart := pieces[0].span[0]
	segEnd := pieces[0].span[1]
	buf := append([]byte(nil), pieces[0].value...)
	flush := func() {
		c.addLocked(Span{segStart, segEnd}, buf)
	}
	for i := 1; i < len(pieces); i++ {
		p := pieces[i]
		if p.span[0] > segEnd {
			flush()
			segStart, segEnd = p.span[0], p.span[1]
			buf = append([]byte(nil), p.value...)
			continue
		}
		if p.span[1] > segEnd {
			buf = append(buf, p.value[segEnd-p.span[0]:]...)
			segEnd = p.span[1]
		}
	}
	flush()

	c.evictLocked()
}

func (c *Cache) addLocked(span Span, value []byte) {
	c.entries[span] = entry{value: value, lastRead: time.Now()}
	c.occupied += int64(len(value))
	c.elems[span] = c.order.PushFront(span)
}

func (c *Cache) dropLocked(span Span) {
	if e, ok := c.entries[span]; ok {
		c.occupied -= int64(len(e.value))
		delete(c.entries, span)
	}
	if elem, ok := c.elems[span]; ok {
		c.order.Remove(elem)
		delete(c.elems, span)
	}
}

func (c *Cache) evictLocked() {
	for c.maxBytes > 0 && c.occupied > c.maxBytes && c.order.Len() > 0 {
		back := c.order.Back()
		span := back.Value.(Span)
		klog.V(5).Infof("rangecache[%s]: evicting %v, occupied=%d", c.name, span, c.occupied)
		c.dropLocked(span)
	}
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
