package main

import (
	"context"
	"fmt"
	"log/slog"

	"radioscribe/internal/catalog"
	"radioscribe/internal/config"
	"radioscribe/internal/daemon"
	"radioscribe/internal/download"
	"radioscribe/internal/ingest"
	"radioscribe/internal/services/getiplayer"
	"radioscribe/internal/services/whisper"
	"radioscribe/internal/transcribe"
	"radioscribe/internal/workflow"
)

// run wires the pipeline together and blocks until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := catalog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}

	fetch := getiplayer.New(cfg.Fetch)
	stt := whisper.New(cfg.Transcription)

	ingestor := ingest.NewIngestor(store, logger)
	refresher := ingest.NewRefresher(fetch, ingestor, store, cfg, logger)
	scheduler := download.NewScheduler(store, fetch, cfg, logger)
	readiness := download.NewReadinessChecker(store, logger)
	poller := transcribe.NewPoller(store, stt, cfg, logger)

	manager := workflow.NewManager(cfg, store, logger, refresher, scheduler, readiness, poller)

	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		store.Close()
		return err
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	d.Stop()
	return nil
}
