package resolver

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gowarcraft/casc/diskcache"
)

// Options configures a Client.
type Options struct {
	Region  string `yaml:"region"`
	Product string `yaml:"product"`

	// PatchHost is the patch service host, e.g. "patch.battle.net". Defaults
	// to "patch.battle.net" when empty.
	PatchHost string `yaml:"patch_host"`

	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// IndexConcurrency bounds how many archive .index fetches run at once
	// during Init. Defaults to 10.
	IndexConcurrency int `yaml:"index_concurrency"`

	// RangeCacheBytes bounds the per-archive range cache. Defaults to 64 MiB.
	RangeCacheBytes int64 `yaml:"range_cache_bytes"`

	// Cache is an advisory blob cache keyed by the CDN cache-key scheme
	// (config_<hash>, <hash>, <hash>.index). Nil uses an in-memory TTL cache.
	Cache diskcache.Cache `yaml:"-"`

	// OnArchiveProgress, if set, is called after each archive index fetch
	// attempt during Init (success or skip) with the running count and the
	// total number of archives listed in the CDN config. Intended for a CLI
	// progress bar; never called concurrently with itself.
	OnArchiveProgress func(done, total int) `yaml:"-"`
}

func (o *Options) setDefaults() {
	if o.PatchHost == "" {
		o.PatchHost = "patch.battle.net"
	}
	if o.HTTPTimeout <= 0 {
		o.HTTPTimeout = 30 * time.Second
	}
	if o.IndexConcurrency <= 0 {
		o.IndexConcurrency = 10
	}
	if o.RangeCacheBytes <= 0 {
		o.RangeCacheBytes = 64 * 1024 * 1024
	}
	if o.Cache == nil {
		o.Cache = diskcache.NewMemCache(0)
	}
}

// LoadOptionsFile reads a YAML config file describing Options. The Cache
// field cannot be set from YAML and is left nil (New fills in the default).
func LoadOptionsFile(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resolver: read options file: %w", err)
	}
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("resolver: parse options file %s: %w", path, err)
	}
	return &opts, nil
}
