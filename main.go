package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/musclemap/apiprobe/cli"
	"github.com/musclemap/apiprobe/utils"
	logutil "github.com/musclemap/apiprobe/utils/log"
)

// version is injected at build time by ldflags.
var version string

func main() {
	if version == "" {
		version = "dev"
	}

	logger, err := logutil.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.Root(ctx, logger, version)
	if rootCmd == nil {
		os.Exit(1)
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, utils.ErrTestsFailed) {
			utils.LogError(logger, err, "command failed")
		}
		os.Exit(1)
	}
}
