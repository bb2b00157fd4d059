// Package metrics exposes the client's Prometheus instrumentation: fetch,
// lookup, and decode latency, plus counters for cache and archive-index
// outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var FetchLatencyHistogram = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "casc_fetch_latency_seconds",
		Help:    "CDN fetch latency by endpoint kind",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	},
	[]string{"endpoint"}, // cdns, versions, config, data, index
)

var FetchStatusCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "casc_fetch_total",
		Help: "CDN fetches by endpoint kind and outcome",
	},
	[]string{"endpoint", "outcome"}, // outcome: ok, error
)

var IndexLookupHistogram = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "casc_index_lookup_latency_seconds",
		Help:    "Archive index lookup latency",
		Buckets: prometheus.ExponentialBuckets(0.000001, 10, 10),
	},
	[]string{"hit"}, // "true" or "false"
)

var BLTEDecodeHistogram = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "casc_blte_decode_latency_seconds",
		Help:    "BLTE decode latency by codec",
		Buckets: prometheus.ExponentialBuckets(0.00001, 10, 8),
	},
	[]string{"codec"},
)

var ArchiveIndexLoadCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "casc_archive_index_load_total",
		Help: "Archive index loads during init, by outcome",
	},
	[]string{"outcome"}, // ok, skipped
)

var RangeCacheOccupiedBytes = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "casc_rangecache_occupied_bytes",
		Help: "Bytes currently retained by an archive's range cache",
	},
	[]string{"archive"},
)
