package workflow

import (
	"context"

	"radioscribe/internal/catalog"
)

// Status is a point-in-time snapshot of pipeline state.
type Status struct {
	Running        bool
	Queue          catalog.HealthSummary
	TranscribingID int64
	LastError      string
}

// Status reports whether the lanes are running, the per-status queue
// counts, and the show currently being transcribed, if any.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	health, err := m.store.Health(ctx)
	if err != nil {
		return Status{}, err
	}

	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	m.mu.RUnlock()

	status := Status{
		Running:        running,
		Queue:          health,
		TranscribingID: m.poller.Current(),
	}
	if lastErr != nil {
		status.LastError = lastErr.Error()
	}
	return status, nil
}
