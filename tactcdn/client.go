package tactcdn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goware/urlx"

	"github.com/gowarcraft/casc/internal/retry"
)

// Client is the read-only HTTP surface against a patch service and a chosen
// CDN host. It is safe for concurrent use.
type Client struct {
	http       *http.Client
	patchHost  string // e.g. "patch.battle.net"
	maxRetries int
	retryWait  time.Duration
}

// Options configures a Client.
type Options struct {
	PatchHost  string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
}

// New constructs a Client. A zero Options uses "patch.battle.net" and
// conservative retry defaults.
func New(opts Options) *Client {
	if opts.PatchHost == "" {
		opts.PatchHost = "patch.battle.net"
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 100 * time.Millisecond
	}
	return &Client{
		http:       newHTTPClient(opts.Timeout),
		patchHost:  opts.PatchHost,
		maxRetries: opts.MaxRetries,
		retryWait:  opts.RetryWait,
	}
}

// Close releases idle connections held by the client's transport.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// CDNs fetches the per-product CDN table from the patch service.
func (c *Client) CDNs(ctx context.Context, region, product string) (*Table, error) {
	url := fmt.Sprintf("http://%s.%s:1119/%s/cdns", region, c.patchHost, product)
	body, err := c.fetchText(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseTable(body), nil
}

// Versions fetches the per-product version table from the patch service.
func (c *Client) Versions(ctx context.Context, region, product string) (*Table, error) {
	url := fmt.Sprintf("http://%s.%s:1119/%s/versions", region, c.patchHost, product)
	body, err := c.fetchText(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseTable(body), nil
}

// Config fetches a build/CDN config file by its MD5 hash from the given
// CDN host, under the given path prefix (typically the CDN table's "Path"
// column).
func (c *Client) Config(ctx context.Context, host, path, hash string) (*ConfigFile, error) {
	body, err := c.fetchText(ctx, configURL(host, path, hash))
	if err != nil {
		return nil, err
	}
	return parseConfig(body), nil
}

// ConfigBytes fetches the raw bytes of a build/CDN config file, for callers
// that want to cache the unparsed form.
func (c *Client) ConfigBytes(ctx context.Context, host, path, hash string) ([]byte, error) {
	return c.fetchBytes(ctx, configURL(host, path, hash), -1, -1)
}

// Data fetches the full content (loose file or archive) identified by hash
// from the given CDN host. suffix is "" for a data blob or ".index" for an
// archive index.
func (c *Client) Data(ctx context.Context, host, path, hash, suffix string) ([]byte, error) {
	url := dataURL(host, path, hash, suffix)
	return c.fetchBytes(ctx, url, -1, -1)
}

// DataRange fetches [offset, offset+length) of the blob identified by hash.
func (c *Client) DataRange(ctx context.Context, host, path, hash string, offset, length int64) ([]byte, error) {
	url := dataURL(host, path, hash, "")
	return c.fetchBytes(ctx, url, offset, length)
}

// ContentLength discovers the size of the blob at url via a HEAD request,
// falling back to a one-byte range GET (bytes=0-0) and its Content-Range
// total for servers that don't support HEAD.
func (c *Client) ContentLength(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err == nil && resp.StatusCode == http.StatusOK {
		defer resp.Body.Close()
		return resp.ContentLength, nil
	}
	if resp != nil {
		resp.Body.Close()
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", "bytes=0-0")
	resp, err = c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent {
		return 0, &FetchFailedError{URL: url, Status: resp.StatusCode}
	}
	var total int64
	if _, err := fmt.Sscanf(resp.Header.Get("Content-Range"), "bytes 0-0/%d", &total); err != nil {
		return 0, fmt.Errorf("tactcdn: missing Content-Range on %s: %w", url, err)
	}
	return total, nil
}

func configURL(host, path, hash string) string {
	return fmt.Sprintf("http://%s/%s/config/%s/%s/%s", host, path, hash[0:2], hash[2:4], hash)
}

func dataURL(host, path, hash, suffix string) string {
	return fmt.Sprintf("http://%s/%s/data/%s/%s/%s%s", host, path, hash[0:2], hash[2:4], hash, suffix)
}

func (c *Client) fetchText(ctx context.Context, url string) (string, error) {
	b, err := c.fetchBytes(ctx, url, -1, -1)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// fetchBytes performs a GET against url, optionally as a byte range, and
// retries with exponential backoff on transport or non-2xx failures.
func (c *Client) fetchBytes(ctx context.Context, url string, offset, length int64) ([]byte, error) {
	if _, err := urlx.Parse(url); err != nil {
		return nil, fmt.Errorf("tactcdn: invalid URL %q: %w", url, err)
	}

	var out []byte
	err := retry.ExponentialBackoff(ctx, c.retryWait, c.maxRetries, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if offset >= 0 && length >= 0 {
			req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
			return &FetchFailedError{URL: url, Status: resp.StatusCode}
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		out = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
