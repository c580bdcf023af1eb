package ingest

import (
	"context"
	"log/slog"
	"time"

	"radioscribe/internal/catalog"
	"radioscribe/internal/config"
	"radioscribe/internal/logging"
	"radioscribe/internal/services/getiplayer"
)

// SettingLastRefresh is the settings key recording the last completed
// catalog sweep, stored as RFC 3339 UTC.
const SettingLastRefresh = "last_refresh_at"

// CatalogSource is the slice of the fetch client the refresher needs.
type CatalogSource interface {
	RefreshCache(ctx context.Context) error
	Search(ctx context.Context, query string, opts getiplayer.SearchOptions) ([]getiplayer.RawCatalogEntry, error)
	ListChannels(ctx context.Context) ([]string, error)
}

// Refresher refreshes the upstream programme cache and sweeps the
// configured channels and categories for new shows.
type Refresher struct {
	source   CatalogSource
	ingestor *Ingestor
	store    *catalog.Store
	station  config.Station
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewRefresher(source CatalogSource, ingestor *Ingestor, store *catalog.Store, cfg *config.Config, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Refresher{
		source:   source,
		ingestor: ingestor,
		store:    store,
		station:  cfg.Station,
		interval: time.Duration(cfg.Workflow.RefreshInterval) * time.Minute,
		logger:   logger.With(logging.String(logging.FieldComponent, "refresh")),
		now:      time.Now,
	}
}

// Refresh re-downloads the programme index, sweeps every configured
// channel and category combination, and records the completion time.
// Returns the number of newly discovered shows.
func (r *Refresher) Refresh(ctx context.Context) (int, error) {
	r.logger.Info("refreshing programme cache")
	if err := r.source.RefreshCache(ctx); err != nil {
		return 0, err
	}

	plan, err := r.sweepPlan(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, opts := range plan {
		entries, err := r.source.Search(ctx, ".*", opts)
		if err != nil {
			return added, err
		}
		count, err := r.ingestor.IngestEntries(ctx, entries)
		if err != nil {
			return added, err
		}
		added += count
	}

	stamp := r.now().UTC().Format(time.RFC3339)
	if err := r.store.SetSetting(ctx, SettingLastRefresh, stamp, "time of last completed catalog sweep"); err != nil {
		return added, err
	}
	r.logger.Info("refresh complete", logging.Int("new_shows", added))
	return added, nil
}

// sweepPlan enumerates the channel and category combinations to search.
// When the config lists no channels, the available channels are asked of
// the tool instead; if that also comes back empty, a single unrestricted
// sweep runs.
func (r *Refresher) sweepPlan(ctx context.Context) ([]getiplayer.SearchOptions, error) {
	channels := r.station.Channels
	if len(channels) == 0 {
		listed, err := r.source.ListChannels(ctx)
		if err != nil {
			return nil, err
		}
		channels = listed
		r.logger.Info("no channels configured, sweeping all", logging.Int("channels", len(channels)))
	}
	if len(channels) == 0 {
		channels = []string{""}
	}
	categories := r.station.Categories
	if len(categories) == 0 {
		categories = []string{""}
	}
	plan := make([]getiplayer.SearchOptions, 0, len(channels)*len(categories))
	for _, channel := range channels {
		for _, category := range categories {
			plan = append(plan, getiplayer.SearchOptions{Channel: channel, Category: category})
		}
	}
	return plan, nil
}

// Due reports whether the refresh interval has elapsed since the last
// recorded sweep. A catalog with no recorded sweep is always due.
func (r *Refresher) Due(ctx context.Context) (bool, error) {
	last, ok, err := r.LastRefresh(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return r.now().Sub(last) >= r.interval, nil
}

// LastRefresh returns the time of the last completed sweep, if any.
func (r *Refresher) LastRefresh(ctx context.Context) (time.Time, bool, error) {
	value, ok, err := r.store.GetSetting(ctx, SettingLastRefresh)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	last, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// An unreadable stamp should trigger a fresh sweep, not an error.
		return time.Time{}, false, nil
	}
	return last, true, nil
}
