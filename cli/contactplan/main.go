// Package main is the contactplan command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/legplan/contactplan/cli"
	"github.com/legplan/contactplan/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		logging.Global().Error(err)
		cancel()
		//nolint:gocritic
		os.Exit(1)
	}
}
