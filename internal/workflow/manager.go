package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"radioscribe/internal/catalog"
	"radioscribe/internal/config"
	"radioscribe/internal/logging"
	"radioscribe/internal/services"
)

// CatalogRefresher discovers new shows when the refresh interval elapses.
type CatalogRefresher interface {
	Due(ctx context.Context) (bool, error)
	Refresh(ctx context.Context) (int, error)
}

// Downloader drains pending shows through the fetch tool.
type Downloader interface {
	ProcessPending(ctx context.Context, limit int) (int, error)
}

// ReadinessChecker promotes downloaded shows whose audio is on disk.
type ReadinessChecker interface {
	CheckReady(ctx context.Context) (int, error)
}

// TranscriptionPoller works ready shows through transcription.
type TranscriptionPoller interface {
	ProcessNext(ctx context.Context) (bool, error)
	Current() int64
}

// Manager runs the pipeline as two independent lanes over the shared
// catalog. The download lane sweeps the upstream catalog and fetches
// audio; the transcribe lane drains ready shows one at a time. The lanes
// never talk to each other: the status column is the only coordination.
type Manager struct {
	store      *catalog.Store
	logger     *slog.Logger
	refresher  CatalogRefresher
	downloader Downloader
	readiness  ReadinessChecker
	poller     TranscriptionPoller

	pollInterval  time.Duration
	errorInterval time.Duration

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

func NewManager(cfg *config.Config, store *catalog.Store, logger *slog.Logger, refresher CatalogRefresher, downloader Downloader, readiness ReadinessChecker, poller TranscriptionPoller) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		store:         store,
		logger:        logger.With(logging.String(logging.FieldComponent, "workflow")),
		refresher:     refresher,
		downloader:    downloader,
		readiness:     readiness,
		poller:        poller,
		pollInterval:  time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		errorInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(2)
	m.mu.Unlock()

	go m.runLane(runCtx, "download", m.DownloadIteration)
	go m.runLane(runCtx, "transcribe", m.TranscribeIteration)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// runLane repeats one iteration function until shutdown. Iterations that
// return an error back off for the error retry interval; busy iterations
// loop immediately so a full queue drains without poll delays.
func (m *Manager) runLane(ctx context.Context, name string, iterate func(context.Context) (bool, error)) {
	defer m.wg.Done()
	logger := m.logger.With(logging.String("lane", name))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		iterCtx := services.WithRequestID(ctx, uuid.NewString())
		busy, err := iterate(iterCtx)
		switch {
		case err != nil && errors.Is(err, context.Canceled):
			return
		case err != nil:
			m.setLastError(err)
			logger.Error("lane iteration failed", logging.Error(err))
			if !m.wait(ctx, m.errorInterval) {
				return
			}
		case busy:
			// More work may be waiting; go straight back around.
		default:
			if !m.wait(ctx, m.pollInterval) {
				return
			}
		}
	}
}

func (m *Manager) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// DownloadIteration runs one pass of the download lane: a catalog sweep
// when due, then pending downloads, then the readiness check. Reports
// whether any show moved.
func (m *Manager) DownloadIteration(ctx context.Context) (bool, error) {
	due, err := m.refresher.Due(ctx)
	if err != nil {
		return false, err
	}
	if due {
		if _, err := m.refresher.Refresh(ctx); err != nil {
			return false, err
		}
	}

	downloaded, err := m.downloader.ProcessPending(ctx, 0)
	if err != nil {
		return false, err
	}
	promoted, err := m.readiness.CheckReady(ctx)
	if err != nil {
		return downloaded > 0, err
	}
	return downloaded > 0 || promoted > 0, nil
}

// TranscribeIteration runs one pass of the transcribe lane: at most one
// show is claimed and transcribed. Per-show failures are already recorded
// on the show, so they pause the lane but never stop it.
func (m *Manager) TranscribeIteration(ctx context.Context) (bool, error) {
	processed, err := m.poller.ProcessNext(ctx)
	if err != nil {
		return processed, err
	}
	return processed, nil
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
