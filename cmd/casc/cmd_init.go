package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/gowarcraft/casc/resolver"
)

func newCmd_Init() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Run product/region discovery and warm the archive index cache.",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			regionFlag, productFlag, configFlag, cacheDirFlag,
		},
		Action: func(c *cli.Context) error {
			opts, err := optionsFromContext(c)
			if err != nil {
				return err
			}

			var bar *progressbar.ProgressBar
			opts.OnArchiveProgress = func(done, total int) {
				if bar == nil {
					bar = progressbar.NewOptions(total,
						progressbar.OptionSetDescription("loading archive indexes"),
						progressbar.OptionShowCount(),
						progressbar.OptionClearOnFinish(),
					)
				}
				bar.Set(done)
			}

			client := resolver.New(*opts)
			defer client.Close()

			ctx := c.Context
			started := time.Now()
			if err := client.Init(ctx); err != nil {
				return fmt.Errorf("init: %w", err)
			}

			fmt.Printf("session %s ready in %s\n", SessionID, time.Since(started).Round(time.Millisecond))
			return nil
		},
	}
}
