package main

import (
	"fmt"
	"text/tabwriter"

	"os"

	"github.com/urfave/cli/v2"

	"github.com/gowarcraft/casc/resolver"
)

func newCmd_Resolve() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Print every root manifest entry whose path matches the given substring.",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			regionFlag, productFlag, configFlag, cacheDirFlag,
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one argument: a path substring", 1)
			}
			path := c.Args().First()

			opts, err := optionsFromContext(c)
			if err != nil {
				return err
			}
			client := resolver.New(*opts)
			defer client.Close()

			ctx := c.Context
			if err := client.Init(ctx); err != nil {
				return fmt.Errorf("init: %w", err)
			}

			matches := client.ByPath(path)
			if len(matches) == 0 {
				fmt.Println("no matches")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILEDATAID\tCONTENTKEY\tPATH")
			for _, e := range matches {
				p := ""
				if e.NormalizedPath != nil {
					p = *e.NormalizedPath
				}
				fmt.Fprintf(tw, "%d\t%x\t%s\n", e.FileDataID, e.ContentKey, p)
			}
			return tw.Flush()
		},
	}
}
