package download

import (
	"context"
	"log/slog"

	"radioscribe/internal/catalog"
	"radioscribe/internal/fileutil"
	"radioscribe/internal/logging"
)

// ReadinessChecker promotes downloaded shows to ready_for_transcription
// once their audio file is confirmed on disk. Glob download paths are
// resolved to the concrete file as part of the check.
type ReadinessChecker struct {
	store  *catalog.Store
	logger *slog.Logger
}

func NewReadinessChecker(store *catalog.Store, logger *slog.Logger) *ReadinessChecker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ReadinessChecker{
		store:  store,
		logger: logger.With(logging.String(logging.FieldComponent, "readiness")),
	}
}

// CheckReady scans every downloaded show and promotes those whose audio is
// present. Shows whose file has not appeared yet are left downloaded for
// the next sweep. Returns the number of shows promoted.
func (c *ReadinessChecker) CheckReady(ctx context.Context) (int, error) {
	shows, err := c.store.ShowsByStatus(ctx, catalog.StatusDownloaded, 0)
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, show := range shows {
		if err := ctx.Err(); err != nil {
			return promoted, err
		}
		path := show.DownloadPath
		if path == "" {
			continue
		}
		if fileutil.IsGlob(path) {
			matches, err := fileutil.ResolveGlob(path)
			if err != nil {
				return promoted, err
			}
			if len(matches) == 0 {
				continue
			}
			path = matches[0]
			if err := c.store.SetDownloadPath(ctx, show.ID, path); err != nil {
				return promoted, err
			}
		}
		if !fileutil.FileExists(path) {
			continue
		}
		ok, err := c.store.TransitionStatus(ctx, show.ID, catalog.StatusDownloaded, catalog.StatusReadyForTranscription)
		if err != nil {
			return promoted, err
		}
		if !ok {
			continue
		}
		promoted++
		c.logger.Info("ready for transcription",
			logging.Int64(logging.FieldShowID, show.ID),
			logging.String(logging.FieldPID, show.PID),
			logging.String("path", path),
		)
	}
	return promoted, nil
}
