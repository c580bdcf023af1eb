package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"radioscribe/internal/catalog"
	"radioscribe/internal/config"
	"radioscribe/internal/fileutil"
	"radioscribe/internal/logging"
	"radioscribe/internal/services"
	"radioscribe/internal/services/whisper"
)

// Transcriber is the slice of the speech-to-text service the poller needs.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir string) (*whisper.Result, error)
}

// Poller works ready shows through transcription one at a time. Like the
// download scheduler it claims work with a conditional status update, so
// several pollers sharing one catalog cannot transcribe the same show.
type Poller struct {
	store         *catalog.Store
	transcriber   Transcriber
	transcriptDir string
	logger        *slog.Logger

	mu      sync.Mutex
	current int64
}

func NewPoller(store *catalog.Store, transcriber Transcriber, cfg *config.Config, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Poller{
		store:         store,
		transcriber:   transcriber,
		transcriptDir: cfg.Paths.TranscriptDir,
		logger:        logger.With(logging.String(logging.FieldComponent, "transcribe")),
	}
}

// Current returns the id of the show being transcribed, or 0 when idle.
func (p *Poller) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Poller) setCurrent(id int64) {
	p.mu.Lock()
	p.current = id
	p.mu.Unlock()
}

// ProcessNext claims the most recently broadcast ready show and transcribes
// it. Returns false when no show was claimed. Transcription failures park
// the show in the error status with the reason recorded, and are returned.
func (p *Poller) ProcessNext(ctx context.Context) (bool, error) {
	show, err := p.store.NextForStatus(ctx, catalog.StatusReadyForTranscription)
	if err != nil {
		return false, err
	}
	if show == nil {
		return false, nil
	}

	claimed, err := p.store.TransitionStatus(ctx, show.ID, catalog.StatusReadyForTranscription, catalog.StatusTranscribing)
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, nil
	}
	p.setCurrent(show.ID)
	defer p.setCurrent(0)

	ctx = services.WithShowID(ctx, show.ID)
	log := p.logger.With(
		logging.Int64(logging.FieldShowID, show.ID),
		logging.String(logging.FieldPID, show.PID),
	)
	log.Info("transcribing", logging.String("title", show.Title))

	if show.DownloadPath == "" || !fileutil.FileExists(show.DownloadPath) {
		cause := services.Wrap(services.ErrValidation, "transcribe", "process",
			fmt.Sprintf("audio file missing: %s", show.DownloadPath), nil)
		return true, p.fail(ctx, log, show.ID, cause)
	}

	outputDir := filepath.Join(p.transcriptDir, fileutil.SanitizeName(show.Title))
	result, err := p.transcriber.Transcribe(ctx, show.DownloadPath, outputDir)
	if err != nil {
		return true, p.fail(ctx, log, show.ID, err)
	}

	// Without diarization the tool reports no speaker labels; a broadcast
	// still has at least one voice.
	speakers := len(result.Speakers)
	if speakers == 0 {
		speakers = 1
	}

	for format, path := range result.OutputFiles {
		record := &catalog.Transcription{
			ShowID:    show.ID,
			Path:      path,
			Format:    format,
			WordCount: result.WordCount,
			Speakers:  speakers,
		}
		if _, err := p.store.SaveTranscription(ctx, record); err != nil {
			return true, p.fail(ctx, log, show.ID, err)
		}
	}

	moved, err := p.store.TransitionStatus(ctx, show.ID, catalog.StatusTranscribing, catalog.StatusTranscribed)
	if err != nil {
		return true, p.fail(ctx, log, show.ID, err)
	}
	if !moved {
		return true, fmt.Errorf("show %d left transcribing while claimed", show.ID)
	}
	log.Info("transcription complete",
		logging.Int("word_count", result.WordCount),
		logging.Int("artifacts", len(result.OutputFiles)),
	)
	return true, nil
}

func (p *Poller) fail(ctx context.Context, log *slog.Logger, id int64, cause error) error {
	log.Error("transcription failed", logging.Error(cause))
	if markErr := p.store.MarkError(ctx, id, cause.Error()); markErr != nil {
		return fmt.Errorf("record failure: %w (original: %v)", markErr, cause)
	}
	return cause
}
