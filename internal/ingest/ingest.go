package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"radioscribe/internal/catalog"
	"radioscribe/internal/logging"
	"radioscribe/internal/services/getiplayer"
)

var titleCaser = cases.Title(language.BritishEnglish)

// Ingestor turns raw catalog entries into pending catalog rows. The PID is
// the natural key: entries whose PID already exists are skipped, which
// makes repeated sweeps over overlapping search results idempotent.
type Ingestor struct {
	store  *catalog.Store
	logger *slog.Logger
}

func NewIngestor(store *catalog.Store, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Ingestor{store: store, logger: logger}
}

// IngestEntries records every previously unseen entry as a pending show
// and returns the number of new rows. Entries without a PID are dropped.
func (i *Ingestor) IngestEntries(ctx context.Context, entries []getiplayer.RawCatalogEntry) (int, error) {
	added := 0
	for _, entry := range entries {
		pid := strings.TrimSpace(entry.PID)
		if pid == "" {
			continue
		}
		existing, err := i.store.GetShowByPID(ctx, pid)
		if err != nil {
			return added, err
		}
		if existing != nil {
			continue
		}
		show := &catalog.Show{
			PID:           pid,
			Title:         normalizeTitle(entry.Name),
			Description:   strings.TrimSpace(entry.Desc),
			Episode:       strings.TrimSpace(entry.Episode),
			BroadcastDate: strings.TrimSpace(entry.FirstBroadcast),
			Duration:      entry.DurationSeconds(),
			Status:        catalog.StatusPending,
			Metadata: catalog.Metadata{
				Channel:    strings.TrimSpace(entry.Channel),
				Categories: entry.CategoryList(),
				Thumbnail:  strings.TrimSpace(entry.Thumbnail),
				Guidance:   strings.TrimSpace(entry.Guidance),
				WebURL:     strings.TrimSpace(entry.Web),
			},
		}
		if show.Title == "" {
			show.Title = pid
		}
		if _, err := i.store.AddShow(ctx, show); err != nil {
			// Another sweep may have inserted the same PID between our
			// lookup and insert; that is a skip, not a failure.
			if errors.Is(err, catalog.ErrDuplicatePID) {
				continue
			}
			return added, err
		}
		added++
		i.logger.Info("discovered programme",
			logging.String(logging.FieldPID, pid),
			logging.String("title", show.Title),
			logging.String("channel", show.Metadata.Channel),
		)
	}
	return added, nil
}

// normalizeTitle trims the upstream name and repairs shouting titles the
// catalog occasionally serves fully uppercased.
func normalizeTitle(name string) string {
	title := strings.TrimSpace(name)
	if title == "" {
		return ""
	}
	if hasLetter(title) && title == strings.ToUpper(title) {
		return titleCaser.String(strings.ToLower(title))
	}
	return title
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
