package transcribe_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"radioscribe/internal/catalog"
	"radioscribe/internal/services"
	"radioscribe/internal/services/whisper"
	"radioscribe/internal/testsupport"
	"radioscribe/internal/transcribe"
)

type stubTranscriber struct {
	calls  int
	err    error
	result *whisper.Result
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioPath, outputDir string) (*whisper.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &whisper.Result{
		Text:      "Hello world",
		WordCount: 2,
		OutputFiles: map[string]string{
			"txt":  filepath.Join(outputDir, "show.txt"),
			"json": filepath.Join(outputDir, "show.json"),
		},
	}, nil
}

func TestProcessNextTranscribesAndRecordsArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stub := &stubTranscriber{}
	poller := transcribe.NewPoller(store, stub, cfg, nil)
	ctx := context.Background()

	show := testsupport.NewShowWithStatus(t, store, "The News Quiz", "m0001abc", catalog.StatusReadyForTranscription)
	audio := testsupport.WriteAudioFile(t, filepath.Join(cfg.Paths.DownloadDir, "The News Quiz", "show_m0001abc.m4a"))
	if err := store.SetDownloadPath(ctx, show.ID, audio); err != nil {
		t.Fatalf("SetDownloadPath: %v", err)
	}

	processed, err := poller.ProcessNext(ctx)
	if err != nil {
		t.Fatalf("ProcessNext: %v", err)
	}
	if !processed {
		t.Fatal("expected a show to be processed")
	}

	got, err := store.GetShow(ctx, show.ID)
	if err != nil {
		t.Fatalf("GetShow: %v", err)
	}
	if got.Status != catalog.StatusTranscribed {
		t.Fatalf("status = %s, want transcribed", got.Status)
	}

	records, err := store.TranscriptionsForShow(ctx, show.ID)
	if err != nil {
		t.Fatalf("TranscriptionsForShow: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(records))
	}
	for _, record := range records {
		if record.WordCount != 2 {
			t.Fatalf("word count = %d, want 2", record.WordCount)
		}
		// Plain transcription carries no speaker labels; one voice minimum.
		if record.Speakers != 1 {
			t.Fatalf("speakers = %d, want 1", record.Speakers)
		}
	}
	if poller.Current() != 0 {
		t.Fatal("current claim not cleared")
	}
}

func TestProcessNextRecordsDiarizedSpeakerCount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stub := &stubTranscriber{result: &whisper.Result{
		Text:      "Hello there",
		WordCount: 2,
		Speakers:  []string{"SPEAKER_00", "SPEAKER_01"},
		OutputFiles: map[string]string{
			"txt": "show.txt",
		},
	}}
	poller := transcribe.NewPoller(store, stub, cfg, nil)
	ctx := context.Background()

	show := testsupport.NewShowWithStatus(t, store, "Any Questions", "m0003ghi", catalog.StatusReadyForTranscription)
	audio := testsupport.WriteAudioFile(t, filepath.Join(cfg.Paths.DownloadDir, "Any Questions", "show_m0003ghi.m4a"))
	if err := store.SetDownloadPath(ctx, show.ID, audio); err != nil {
		t.Fatalf("SetDownloadPath: %v", err)
	}

	if _, err := poller.ProcessNext(ctx); err != nil {
		t.Fatalf("ProcessNext: %v", err)
	}
	record, err := store.TranscriptionForFormat(ctx, show.ID, "txt")
	if err != nil || record == nil {
		t.Fatalf("TranscriptionForFormat: record=%v err=%v", record, err)
	}
	if record.Speakers != 2 {
		t.Fatalf("speakers = %d, want 2", record.Speakers)
	}
}

func TestProcessNextNoReadyShows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stub := &stubTranscriber{}
	poller := transcribe.NewPoller(store, stub, cfg, nil)

	processed, err := poller.ProcessNext(context.Background())
	if err != nil {
		t.Fatalf("ProcessNext: %v", err)
	}
	if processed {
		t.Fatal("nothing should be processed on an empty catalog")
	}
	if stub.calls != 0 {
		t.Fatal("transcriber must not run without a claim")
	}
}

func TestProcessNextMissingAudioParksInError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stub := &stubTranscriber{}
	poller := transcribe.NewPoller(store, stub, cfg, nil)
	ctx := context.Background()

	show := testsupport.NewShowWithStatus(t, store, "PM", "m0002def", catalog.StatusReadyForTranscription)
	if err := store.SetDownloadPath(ctx, show.ID, filepath.Join(cfg.Paths.DownloadDir, "PM", "gone.m4a")); err != nil {
		t.Fatalf("SetDownloadPath: %v", err)
	}

	processed, err := poller.ProcessNext(ctx)
	if !processed {
		t.Fatal("show should have been claimed")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatal("transcriber must not run on missing audio")
	}

	got, _ := store.GetShow(ctx, show.ID)
	if got.Status != catalog.StatusError {
		t.Fatalf("status = %s, want error", got.Status)
	}
	if got.ErrorMessage == "" {
		t.Fatal("failure reason not recorded")
	}
}

func TestProcessNextCollaboratorFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stub := &stubTranscriber{err: services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "CUDA out of memory", errors.New("exit status 1"))}
	poller := transcribe.NewPoller(store, stub, cfg, nil)
	ctx := context.Background()

	show := testsupport.NewShowWithStatus(t, store, "PM", "m0002def", catalog.StatusReadyForTranscription)
	audio := testsupport.WriteAudioFile(t, filepath.Join(cfg.Paths.DownloadDir, "PM", "show_m0002def.m4a"))
	if err := store.SetDownloadPath(ctx, show.ID, audio); err != nil {
		t.Fatalf("SetDownloadPath: %v", err)
	}

	processed, err := poller.ProcessNext(ctx)
	if !processed {
		t.Fatal("show should have been claimed")
	}
	if !services.IsCollaboratorFailure(err) {
		t.Fatalf("expected collaborator failure, got %v", err)
	}

	got, _ := store.GetShow(ctx, show.ID)
	if got.Status != catalog.StatusError {
		t.Fatalf("status = %s, want error", got.Status)
	}

	// The errored show must not be reclaimed by the next poll.
	processed, err = poller.ProcessNext(ctx)
	if err != nil {
		t.Fatalf("ProcessNext after failure: %v", err)
	}
	if processed {
		t.Fatal("errored show must not be reselected")
	}
}

func TestProcessNextSecondClaimLoses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stub := &stubTranscriber{}
	poller := transcribe.NewPoller(store, stub, cfg, nil)
	ctx := context.Background()

	show := testsupport.NewShowWithStatus(t, store, "PM", "m0002def", catalog.StatusReadyForTranscription)
	// Simulate another worker winning the claim between select and update.
	if _, err := store.TransitionStatus(ctx, show.ID, catalog.StatusReadyForTranscription, catalog.StatusTranscribing); err != nil {
		t.Fatalf("pre-claim: %v", err)
	}

	processed, err := poller.ProcessNext(ctx)
	if err != nil {
		t.Fatalf("ProcessNext: %v", err)
	}
	if processed {
		t.Fatal("claim should have been lost")
	}
	if stub.calls != 0 {
		t.Fatal("transcriber must not run without a claim")
	}
}
