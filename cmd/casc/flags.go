package main

import (
	"github.com/urfave/cli/v2"

	"github.com/gowarcraft/casc/diskcache"
	"github.com/gowarcraft/casc/resolver"
)

var (
	regionFlag = &cli.StringFlag{
		Name:    "region",
		Usage:   "CDN/version region, e.g. \"us\", \"eu\"",
		Value:   "us",
		EnvVars: []string{"CASC_REGION"},
	}
	productFlag = &cli.StringFlag{
		Name:     "product",
		Usage:    "product code, e.g. \"wow\", \"wow_classic\"",
		EnvVars:  []string{"CASC_PRODUCT"},
		Required: true,
	}
	configFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "path to a YAML options file (resolver.Options)",
		EnvVars: []string{"CASC_CONFIG"},
	}
	cacheDirFlag = &cli.StringFlag{
		Name:    "cache-dir",
		Usage:   "persist fetched configs/indexes under this directory instead of caching them in memory only",
		EnvVars: []string{"CASC_CACHE_DIR"},
	}
)

// optionsFromContext builds resolver.Options from --config (if given) and
// overlays --region/--product/--cache-dir from the command line.
func optionsFromContext(c *cli.Context) (*resolver.Options, error) {
	var opts resolver.Options
	if path := c.String("config"); path != "" {
		loaded, err := resolver.LoadOptionsFile(path)
		if err != nil {
			return nil, err
		}
		opts = *loaded
	}
	if region := c.String("region"); region != "" {
		opts.Region = region
	}
	if product := c.String("product"); product != "" {
		opts.Product = product
	}
	if dir := c.String("cache-dir"); dir != "" {
		cache, err := diskcache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		opts.Cache = cache
	}
	return &opts, nil
}
