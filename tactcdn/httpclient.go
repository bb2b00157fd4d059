// Package tactcdn implements the read-only TACT/CASC CDN HTTP surface: the
// patch service's CDN and version tables, config lookup by hash, and data
// (loose file or archive) fetch by hash, with byte-range support.
package tactcdn

import (
	"net"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
)

const (
	defaultMaxIdleConnsPerHost = 20
	defaultTimeout             = 20 * time.Second
	defaultKeepAlive           = 180 * time.Second
)

func newTransport() *http.Transport {
	return &http.Transport{
		IdleConnTimeout:     time.Minute,
		MaxConnsPerHost:     defaultMaxIdleConnsPerHost,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		Proxy:               http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultTimeout,
			KeepAlive: defaultKeepAlive,
			DualStack: true,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// newHTTPClient returns an http.Client tuned for many small, short-lived
// requests against CDN hosts, with transparent gzip negotiation. Safe for
// concurrent use.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: gzhttp.Transport(newTransport()),
	}
}
