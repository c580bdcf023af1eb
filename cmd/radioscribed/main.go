// Command radioscribed runs the broadcast pipeline as a long-lived
// daemon: periodic catalog sweeps, downloads, and transcription, all
// coordinated through the shared catalog database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"radioscribe/internal/config"
	"radioscribe/internal/logging"
	"radioscribe/internal/preflight"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	skipPreflight := flag.Bool("skip-preflight", false, "Skip environment checks at startup")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !*skipPreflight {
		results := preflight.RunAll(ctx, cfg)
		for _, result := range results {
			if !result.Passed && !result.Optional {
				logger.Error("preflight check failed",
					logging.String("check", result.Name),
					logging.String("detail", result.Detail),
				)
			}
		}
		if !preflight.Passed(results) {
			fmt.Fprintln(os.Stderr, "preflight checks failed; fix the environment or pass -skip-preflight")
			os.Exit(1)
		}
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("daemon exited with error", logging.Error(err))
		os.Exit(1)
	}
}
