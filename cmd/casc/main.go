// Command casc is a thin demo CLI over the resolver package: it resolves
// CASC/TACT content keys and root-manifest paths against a live CDN and
// writes decoded bytes to stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/gowarcraft/casc/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Init(ctx, "casc")
	if err != nil {
		klog.Errorf("telemetry init: %v", err)
	} else {
		defer shutdown()
	}

	app := &cli.App{
		Name:  "casc",
		Usage: "read-only CASC/TACT CDN client",
		Flags: newKlogFlagSet(),
		Commands: []*cli.Command{
			newCmd_Init(),
			newCmd_Get(),
			newCmd_Resolve(),
			newCmd_Version(),
		},
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}
