package testsupport

import (
	"context"
	"testing"

	"radioscribe/internal/catalog"
	"radioscribe/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewShow inserts a pending show for tests using the provided store.
func NewShow(t testing.TB, store *catalog.Store, title, pid string) *catalog.Show {
	t.Helper()

	return NewShowWithStatus(t, store, title, pid, catalog.StatusPending)
}

// NewShowWithStatus inserts a show already sitting at the given status.
func NewShowWithStatus(t testing.TB, store *catalog.Store, title, pid string, status catalog.Status) *catalog.Show {
	t.Helper()

	show, err := store.AddShow(context.Background(), &catalog.Show{
		PID:           pid,
		Title:         title,
		BroadcastDate: "2026-08-20T18:30:00+01:00",
		Status:        status,
	})
	if err != nil {
		t.Fatalf("store.AddShow: %v", err)
	}
	return show
}
