// Package resolver is the top-level CASC client: it initializes against a
// product/region, loads the encoding table and archive indexes, and
// resolves content keys to decoded file bytes.
package resolver

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/gowarcraft/casc/archiveindex"
	"github.com/gowarcraft/casc/blte"
	"github.com/gowarcraft/casc/diskcache"
	"github.com/gowarcraft/casc/downloader"
	"github.com/gowarcraft/casc/encoding"
	"github.com/gowarcraft/casc/metrics"
	"github.com/gowarcraft/casc/rangecache"
	"github.com/gowarcraft/casc/root"
	"github.com/gowarcraft/casc/tactcdn"
	"github.com/gowarcraft/casc/telemetry"
)

// Client is a read-only CASC/TACT client for one product/region.
type Client struct {
	opts Options
	cdn  *tactcdn.Client

	cdnHost string
	cdnPath string
	cache   diskcache.Cache

	mu       sync.RWMutex
	encTable *encoding.Table
	index    map[[16]byte]archiveindex.Entry
	manifest *root.Manifest

	archiveCaches map[[16]byte]*rangecache.Cache
	archiveMu     sync.Mutex
}

// New constructs a Client. Call Init before using it.
func New(opts Options) *Client {
	opts.setDefaults()
	return &Client{
		opts:          opts,
		cdn:           tactcdn.New(tactcdn.Options{PatchHost: opts.PatchHost, Timeout: opts.HTTPTimeout}),
		cache:         opts.Cache,
		archiveCaches: make(map[[16]byte]*rangecache.Cache),
	}
}

// Close releases the client's HTTP connections.
func (c *Client) Close() {
	c.cdn.Close()
}

// Init runs the product/region initialization sequence: CDN/version
// selection, build/CDN config fetch, encoding table load, bounded-concurrency
// archive index loading, and an optional root manifest load.
func (c *Client) Init(ctx context.Context) error {
	cdnRow, err := c.selectCDN(ctx)
	if err != nil {
		return err
	}
	hosts := tactcdn.HostsOf(cdnRow)
	if len(hosts) == 0 {
		return ErrNoCDN
	}
	c.cdnHost = hosts[0]
	c.cdnPath = cdnRow["Path"]

	versionRow, err := c.selectVersion(ctx)
	if err != nil {
		return err
	}

	buildConfig, err := c.fetchConfig(ctx, versionRow["BuildConfig"])
	if err != nil {
		return fmt.Errorf("resolver: fetch build config: %w", err)
	}
	cdnConfig, err := c.fetchConfig(ctx, versionRow["CDNConfig"])
	if err != nil {
		return fmt.Errorf("resolver: fetch cdn config: %w", err)
	}

	if err := c.loadEncoding(ctx, buildConfig); err != nil {
		return err
	}
	if err := c.loadArchives(ctx, cdnConfig); err != nil {
		return err
	}
	if err := c.loadRoot(ctx, buildConfig); err != nil {
		return err
	}
	return nil
}

// fetchConfig fetches a build/CDN config file, consulting the advisory
// cache under the "config_<hash>" key first.
func (c *Client) fetchConfig(ctx context.Context, hash string) (*tactcdn.ConfigFile, error) {
	key := "config_" + hash
	if cached, ok := c.cache.Get(key); ok {
		return tactcdn.ParseConfig(string(cached)), nil
	}
	start := time.Now()
	raw, err := c.cdn.ConfigBytes(ctx, c.cdnHost, c.cdnPath, hash)
	metrics.FetchLatencyHistogram.WithLabelValues("config").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, raw)
	return tactcdn.ParseConfig(string(raw)), nil
}

// fetchRaw fetches a loose data blob or archive index, consulting the
// advisory cache under the "<hash>" or "<hash>.index" key first.
func (c *Client) fetchRaw(ctx context.Context, hash, suffix string) ([]byte, error) {
	key := hash + suffix
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}
	endpoint := "data"
	if suffix == ".index" {
		endpoint = "index"
	}
	start := time.Now()
	data, err := c.cdn.Data(ctx, c.cdnHost, c.cdnPath, hash, suffix)
	metrics.FetchLatencyHistogram.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, data)
	return data, nil
}

func (c *Client) selectCDN(ctx context.Context) (map[string]string, error) {
	start := time.Now()
	table, err := c.cdn.CDNs(ctx, c.opts.Region, c.opts.Product)
	metrics.FetchLatencyHistogram.WithLabelValues("cdns").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("resolver: fetch CDN table: %w", err)
	}
	rows := table.Rows()
	if len(rows) == 0 {
		return nil, ErrNoCDN
	}
	var euRow, firstRow map[string]string
	for _, row := range rows {
		if firstRow == nil {
			firstRow = row
		}
		if row["Name"] == c.opts.Region {
			return row, nil
		}
		if row["Name"] == "eu" {
			euRow = row
		}
	}
	if euRow != nil {
		return euRow, nil
	}
	return firstRow, nil
}

func (c *Client) selectVersion(ctx context.Context) (map[string]string, error) {
	start := time.Now()
	table, err := c.cdn.Versions(ctx, c.opts.Region, c.opts.Product)
	metrics.FetchLatencyHistogram.WithLabelValues("versions").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("resolver: fetch version table: %w", err)
	}
	for _, row := range table.Rows() {
		if row["Region"] == c.opts.Region {
			return row, nil
		}
	}
	return nil, ErrNoVersion
}

// loadEncoding resolves the encoding hash from buildConfig.encoding ("<cKey>
// <eKey>", picking the EKey when present), fetches and BLTE-decodes the
// blob, and parses it as an encoding table.
func (c *Client) loadEncoding(ctx context.Context, buildConfig *tactcdn.ConfigFile) error {
	raw, ok := buildConfig.Get("encoding")
	if !ok {
		return ErrNoEncodingHash
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ErrNoEncodingHash
	}
	hash := fields[0]
	if len(fields) > 1 {
		hash = fields[1]
	}

	data, err := c.fetchAndDecode(ctx, "encoding", hash)
	if err != nil {
		return fmt.Errorf("resolver: fetch encoding table: %w", err)
	}
	table, err := encoding.Parse(data)
	if err != nil {
		return fmt.Errorf("resolver: parse encoding table: %w", err)
	}

	c.mu.Lock()
	c.encTable = table
	c.mu.Unlock()
	return nil
}

// loadArchives fetches every archive .index listed in cdnConfig.archives, in
// batches bounded by opts.IndexConcurrency, merging parsed entries into a
// single map. A failed or unparsable index is logged and skipped.
func (c *Client) loadArchives(ctx context.Context, cdnConfig *tactcdn.ConfigFile) error {
	hashes, _ := cdnConfig.GetList("archives")
	index := make(map[[16]byte]archiveindex.Entry, len(hashes)*1024)
	var indexMu sync.Mutex
	var totalBytes int64
	var loaded int
	var done int

	sem := semaphore.NewWeighted(int64(c.opts.IndexConcurrency))
	g, gctx := errgroup.WithContext(ctx)

	reportProgress := func() {
		if c.opts.OnArchiveProgress == nil {
			return
		}
		indexMu.Lock()
		defer indexMu.Unlock()
		done++
		c.opts.OnArchiveProgress(done, len(hashes))
	}

	for _, hash := range hashes {
		hash := hash
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			defer reportProgress()

			archiveHash, err := decodeHash(hash)
			if err != nil {
				logIndexSkipped(hash, err)
				metrics.ArchiveIndexLoadCounter.WithLabelValues("skipped").Inc()
				return nil
			}

			data, err := c.fetchRaw(gctx, hash, ".index")
			if err != nil {
				logIndexSkipped(hash, err)
				metrics.ArchiveIndexLoadCounter.WithLabelValues("skipped").Inc()
				return nil
			}
			entries, err := archiveindex.Parse(data, archiveHash, "archive")
			if err != nil {
				logIndexSkipped(hash, err)
				metrics.ArchiveIndexLoadCounter.WithLabelValues("skipped").Inc()
				return nil
			}

			indexMu.Lock()
			for _, e := range entries {
				index[e.EKey] = e
			}
			loaded++
			totalBytes += int64(len(data))
			indexMu.Unlock()
			metrics.ArchiveIndexLoadCounter.WithLabelValues("ok").Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("resolver: load archive indexes: %w", err)
	}

	logInitSummary(loaded, len(index), totalBytes)

	c.mu.Lock()
	c.index = index
	c.mu.Unlock()
	return nil
}

// loadRoot resolves buildConfig.root through the encoding table and fetches
// the root manifest as a loose CDN file. A missing root field is not an
// error: ByPath simply returns nil until one is loaded.
func (c *Client) loadRoot(ctx context.Context, buildConfig *tactcdn.ConfigFile) error {
	rootCKeyHex, ok := buildConfig.Get("root")
	if !ok {
		return nil
	}
	rootCKey, err := decodeHash(rootCKeyHex)
	if err != nil {
		return fmt.Errorf("resolver: bad root hash %q: %w", rootCKeyHex, err)
	}

	c.mu.RLock()
	entry, found := c.encTable.Lookup(rootCKey)
	c.mu.RUnlock()

	eKeyHex := rootCKeyHex
	if found && len(entry.EKeys) > 0 {
		eKeyHex = hex.EncodeToString(entry.EKeys[0][:])
	}

	data, err := c.fetchAndDecode(ctx, "root", eKeyHex)
	if err != nil {
		return fmt.Errorf("resolver: fetch root manifest: %w", err)
	}
	manifest, err := root.Parse(data)
	if err != nil {
		return fmt.Errorf("resolver: parse root manifest: %w", err)
	}

	c.mu.Lock()
	c.manifest = manifest
	c.mu.Unlock()
	return nil
}

func (c *Client) fetchAndDecode(ctx context.Context, endpoint, hash string) ([]byte, error) {
	_, span := telemetry.StartFetchSpan(ctx, endpoint, map[string]string{"hash": hash})
	defer span.End()

	raw, err := c.fetchRaw(ctx, hash, "")
	if err != nil {
		metrics.FetchStatusCounter.WithLabelValues(endpoint, "error").Inc()
		telemetry.RecordError(span, err, "fetch failed")
		return nil, err
	}
	metrics.FetchStatusCounter.WithLabelValues(endpoint, "ok").Inc()

	decoded, err := blte.Decode(raw)
	if err != nil {
		telemetry.RecordError(span, err, "blte decode failed")
		return nil, err
	}
	return decoded, nil
}

func decodeHash(s string) ([16]byte, error) {
	var out [16]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 16 {
		return out, fmt.Errorf("expected 16 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// candidateEKeys returns encoding[cKey], or [cKey] itself when the encoding
// table has no entry (loose-file fall-through).
func (c *Client) candidateEKeys(cKey [16]byte) [][16]byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.encTable != nil {
		if entry, ok := c.encTable.Lookup(cKey); ok {
			return entry.EKeys
		}
	}
	return [][16]byte{cKey}
}

// GetFile resolves cKey to its decoded bytes, or ErrNotFound if no candidate
// EKey resolves through the archive index.
func (c *Client) GetFile(ctx context.Context, cKey [16]byte) ([]byte, error) {
	for _, eKey := range c.candidateEKeys(cKey) {
		entry, ok := c.lookupIndex(eKey)
		if !ok {
			continue
		}
		raw, err := c.fetchArchiveSlice(ctx, entry)
		if err != nil {
			return nil, err
		}
		return blte.Decode(raw)
	}
	return nil, ErrNotFound
}

// GetFiles resolves every cKey, grouping archive fetches so each archive
// is downloaded at most once, and returns decoded bytes keyed by the
// originating CKey. Misses are simply absent from the result map.
func (c *Client) GetFiles(ctx context.Context, cKeys [][16]byte) (map[[16]byte][]byte, error) {
	out := make(map[[16]byte][]byte, len(cKeys))
	err := c.GetFilesCB(ctx, cKeys, func(cKey [16]byte, data []byte, err error) {
		if err == nil {
			out[cKey] = data
		}
	})
	return out, err
}

// GetFilesCB resolves every cKey and invokes cb once per resolved file (or
// per fetch/decode error). Keys with no candidate EKey in the index are
// silently omitted, matching getFile's NotFound semantics.
func (c *Client) GetFilesCB(ctx context.Context, cKeys [][16]byte, cb func(cKey [16]byte, data []byte, err error)) error {
	var locs []location
	for _, cKey := range cKeys {
		for _, eKey := range c.candidateEKeys(cKey) {
			if entry, ok := c.lookupIndex(eKey); ok {
				locs = append(locs, location{cKey: cKey, entry: entry})
				break
			}
		}
	}

	for _, group := range groupByArchive(locs) {
		full, err := c.fetchArchive(ctx, group.archiveHash)
		if err != nil {
			for _, l := range group.locations {
				cb(l.cKey, nil, err)
			}
			continue
		}
		for _, l := range group.locations {
			decoded, err := blte.Decode(full[l.entry.Offset : l.entry.Offset+l.entry.Size])
			cb(l.cKey, decoded, err)
		}
	}
	return nil
}

// lookupIndex looks up eKey in the archive index, recording hit/miss latency.
func (c *Client) lookupIndex(eKey [16]byte) (archiveindex.Entry, bool) {
	start := time.Now()
	c.mu.RLock()
	entry, ok := c.index[eKey]
	c.mu.RUnlock()
	hit := "false"
	if ok {
		hit = "true"
	}
	metrics.IndexLookupHistogram.WithLabelValues(hit).Observe(time.Since(start).Seconds())
	return entry, ok
}

// fetchArchiveSlice returns [entry.Offset, entry.Offset+entry.Size) of one
// archive's decoded-BLTE-ready bytes.
func (c *Client) fetchArchiveSlice(ctx context.Context, entry archiveindex.Entry) ([]byte, error) {
	full, err := c.fetchArchive(ctx, entry.ArchiveHash)
	if err != nil {
		return nil, err
	}
	return full[entry.Offset : entry.Offset+entry.Size], nil
}

// fetchArchive returns the full bytes of one archive. A per-archive range
// cache holds the whole blob as a single cached span, so repeated calls
// against the same archive reuse it while it stays cached, and concurrent
// ones share one download via the cache's singleflight dedup. A blob larger
// than RangeCacheBytes is evicted as soon as it is inserted, so the next
// call downloads it again; GetFilesCB therefore calls this once per archive
// group and slices every location out of that one buffer.
func (c *Client) fetchArchive(ctx context.Context, archiveHash [16]byte) ([]byte, error) {
	cache, err := c.archiveCacheFor(ctx, archiveHash)
	if err != nil {
		return nil, fmt.Errorf("resolver: size archive %x: %w", archiveHash, err)
	}
	data, err := cache.Get(ctx, 0, cache.Size())
	if err != nil {
		return nil, fmt.Errorf("resolver: fetch archive %x: %w", archiveHash, err)
	}
	logArchiveFetched(hex.EncodeToString(archiveHash[:]), len(data))
	metrics.RangeCacheOccupiedBytes.WithLabelValues(hex.EncodeToString(archiveHash[:])).Set(float64(cache.Occupied()))
	return data, nil
}

func (c *Client) archiveCacheFor(ctx context.Context, archiveHash [16]byte) (*rangecache.Cache, error) {
	c.archiveMu.Lock()
	defer c.archiveMu.Unlock()
	if cache, ok := c.archiveCaches[archiveHash]; ok {
		return cache, nil
	}

	hashHex := hex.EncodeToString(archiveHash[:])
	size, err := c.cdn.ContentLength(ctx, archiveURL(c.cdnHost, c.cdnPath, hashHex))
	if err != nil {
		return nil, err
	}

	url := archiveURL(c.cdnHost, c.cdnPath, hashHex)
	cache := rangecache.New(hashHex, size, func(p []byte, off int64) (int, error) {
		// The resolver only ever asks this cache for the whole blob in one
		// span (fetchArchive calls Get(0, Size())), so the common path pulls
		// it down with the concurrent chunked downloader rather than one
		// giant single-connection range GET. A request for any other span
		// (not exercised today, but Fetcher is a general contract) falls
		// back to a plain ranged fetch.
		if off == 0 && int64(len(p)) == size {
			return c.downloadArchive(url, p)
		}
		data, err := c.cdn.DataRange(context.Background(), c.cdnHost, c.cdnPath, hashHex, off, int64(len(p)))
		if err != nil {
			return 0, err
		}
		return copy(p, data), nil
	}, c.opts.RangeCacheBytes)

	c.archiveCaches[archiveHash] = cache
	return cache, nil
}

// downloadArchive pulls the full blob at url into p using a concurrent
// chunked downloader, bounded by the same concurrency Init uses for archive
// index loads.
func (c *Client) downloadArchive(url string, p []byte) (int, error) {
	dl, err := downloader.New(context.Background(), url, c.opts.IndexConcurrency, 0)
	if err != nil {
		return 0, err
	}
	r, err := dl.Download()
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return io.ReadFull(r, p)
}

func archiveURL(host, path, hash string) string {
	return fmt.Sprintf("http://%s/%s/data/%s/%s/%s", host, path, hash[0:2], hash[2:4], hash)
}

// ByPath returns every root manifest entry whose normalized path contains
// path (case-insensitive, backslash-normalized). Returns nil if no root
// manifest was loaded during Init.
func (c *Client) ByPath(path string) []root.RootEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.manifest == nil {
		return nil
	}
	return c.manifest.ByPath(path)
}
