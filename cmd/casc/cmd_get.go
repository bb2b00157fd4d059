package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gowarcraft/casc/resolver"
)

func newCmd_Get() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Resolve a content key (hex) or root path and write its decoded bytes.",
		ArgsUsage: "<path-or-ckey-hex>",
		Flags: []cli.Flag{
			regionFlag, productFlag, configFlag, cacheDirFlag,
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "write to this file instead of stdout",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one argument: a path or a 32-char hex content key", 1)
			}
			arg := c.Args().First()

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

			cKey, err := resolveCKey(client, arg)
			if err != nil {
				return err
			}

			data, err := client.GetFile(ctx, cKey)
			if err != nil {
				return fmt.Errorf("get %x: %w", cKey, err)
			}

			out := io.Writer(os.Stdout)
			if path := c.String("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			_, err = out.Write(data)
			return err
		},
	}
}

// resolveCKey interprets arg as a 32-character hex content key if it parses
// as one, otherwise as a root-manifest path that must resolve to exactly one
// entry.
func resolveCKey(client *resolver.Client, arg string) ([16]byte, error) {
	if len(arg) == 32 {
		if raw, err := hex.DecodeString(arg); err == nil {
			var cKey [16]byte
			copy(cKey[:], raw)
			return cKey, nil
		}
	}

	matches := client.ByPath(arg)
	switch len(matches) {
	case 0:
		return [16]byte{}, fmt.Errorf("get: no root entry matches path %q", arg)
	case 1:
		return matches[0].ContentKey, nil
	default:
		return [16]byte{}, fmt.Errorf("get: path %q matches %d root entries, use \"resolve\" to disambiguate", arg, len(matches))
	}
}
