package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jadunn1/fcclipper/internal/cli"
	"github.com/jadunn1/fcclipper/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewApp(os.Stdin, os.Stdout).Run(ctx, os.Args[1:])

	stop()
	observability.Sync()
	if err != nil {
		os.Exit(1)
	}
}
