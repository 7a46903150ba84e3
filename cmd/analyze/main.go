package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/sentiscope/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}
