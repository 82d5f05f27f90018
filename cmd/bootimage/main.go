package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/brandonbloom/bootimage/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	os.Exit(cli.ReportError(os.Stderr, err))
}
