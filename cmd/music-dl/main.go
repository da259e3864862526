package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/music-downloader/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := shared.NewLogger(nil)
	app := newApp(newRunner(logger, os.Stdout))

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("interrupted")
			os.Exit(130)
		}
		logger.Error("music-dl failed", "err", err)
		os.Exit(1)
	}
}
