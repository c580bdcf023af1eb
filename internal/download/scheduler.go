package download

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"radioscribe/internal/catalog"
	"radioscribe/internal/config"
	"radioscribe/internal/fileutil"
	"radioscribe/internal/logging"
	"radioscribe/internal/services"
	"radioscribe/internal/services/getiplayer"
)

// Fetcher is the slice of the fetch client the scheduler needs.
type Fetcher interface {
	Download(ctx context.Context, pid, outputDir string) (getiplayer.FetchResult, error)
}

// Scheduler drains pending shows through the fetch tool. Work is claimed
// with a conditional status update, so concurrent schedulers sharing one
// catalog never download the same show twice.
type Scheduler struct {
	store       *catalog.Store
	fetcher     Fetcher
	downloadDir string
	maxPerRun   int
	itemPause   time.Duration
	logger      *slog.Logger
}

func NewScheduler(store *catalog.Store, fetcher Fetcher, cfg *config.Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		store:       store,
		fetcher:     fetcher,
		downloadDir: cfg.Paths.DownloadDir,
		maxPerRun:   cfg.Fetch.MaxPerRun,
		itemPause:   time.Duration(cfg.Workflow.ItemPause) * time.Second,
		logger:      logger.With(logging.String(logging.FieldComponent, "download")),
	}
}

// DownloadShow claims show and runs the fetch tool for it. The first return
// value reports whether the claim succeeded; false means another worker got
// there first and nothing was done. Fetch failures park the show in the
// error status with the failure reason recorded, and are returned.
func (s *Scheduler) DownloadShow(ctx context.Context, show *catalog.Show) (bool, error) {
	claimed, err := s.store.TransitionStatus(ctx, show.ID, catalog.StatusPending, catalog.StatusDownloading)
	if err != nil {
		return false, err
	}
	if !claimed {
		s.logger.Debug("show already claimed",
			logging.Int64(logging.FieldShowID, show.ID),
			logging.String(logging.FieldPID, show.PID),
		)
		return false, nil
	}

	ctx = services.WithShowID(ctx, show.ID)
	log := s.logger.With(
		logging.Int64(logging.FieldShowID, show.ID),
		logging.String(logging.FieldPID, show.PID),
	)
	log.Info("downloading", logging.String("title", show.Title))

	outputDir := filepath.Join(s.downloadDir, fileutil.SanitizeName(show.Title))
	if err := fileutil.EnsureDir(outputDir); err != nil {
		return true, s.fail(ctx, log, show.ID, err)
	}

	result, err := s.fetcher.Download(ctx, show.PID, outputDir)
	if err != nil {
		return true, s.fail(ctx, log, show.ID, err)
	}
	if !result.Success {
		reason := strings.TrimSpace(result.Stderr)
		if reason == "" {
			reason = "fetch tool produced no output file"
		}
		return true, s.fail(ctx, log, show.ID, services.Wrap(services.ErrExternalTool, "get_iplayer", "download", reason, nil))
	}

	// The tool does not always report the saved path; fall back to a glob
	// the readiness check resolves once the file settles on disk.
	path := result.OutputPath
	if path == "" {
		path = filepath.Join(outputDir, "*_"+show.PID+".*")
	}
	if err := s.store.SetDownloadPath(ctx, show.ID, path); err != nil {
		return true, s.fail(ctx, log, show.ID, err)
	}

	moved, err := s.store.TransitionStatus(ctx, show.ID, catalog.StatusDownloading, catalog.StatusDownloaded)
	if err != nil {
		return true, s.fail(ctx, log, show.ID, err)
	}
	if !moved {
		return true, fmt.Errorf("show %d left downloading while claimed", show.ID)
	}
	log.Info("download complete", logging.String("path", path))
	return true, nil
}

func (s *Scheduler) fail(ctx context.Context, log *slog.Logger, id int64, cause error) error {
	log.Error("download failed", logging.Error(cause))
	if markErr := s.store.MarkError(ctx, id, cause.Error()); markErr != nil {
		return fmt.Errorf("record failure: %w (original: %v)", markErr, cause)
	}
	return cause
}

// ProcessPending downloads pending shows most recent broadcast first,
// honoring the configured per-run cap and pausing between items. Individual
// failures are recorded on the show and do not stop the run. Returns the
// number of successful downloads.
func (s *Scheduler) ProcessPending(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = s.maxPerRun
	}
	shows, err := s.store.ShowsByStatus(ctx, catalog.StatusPending, limit)
	if err != nil {
		return 0, err
	}

	done := 0
	for i, show := range shows {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		claimed, err := s.DownloadShow(ctx, show)
		if claimed && err == nil {
			done++
		}
		// The fetch tool was invoked either way; the throttle applies to
		// failed attempts as much as successful ones.
		if claimed && i < len(shows)-1 && s.itemPause > 0 {
			if err := sleepCtx(ctx, s.itemPause); err != nil {
				return done, err
			}
		}
	}
	return done, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
