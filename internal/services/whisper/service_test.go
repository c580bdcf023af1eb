package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"radioscribe/internal/config"
	"radioscribe/internal/services"
)

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "The_News_Quiz_m0001abc.m4a")
	if err := os.WriteFile(path, []byte("not real audio"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// stubRunner writes the given model output to the expected JSON path,
// mimicking the tool's side effect.
func stubRunner(t *testing.T, output modelOutput) CommandRunner {
	t.Helper()
	return func(ctx context.Context, name string, args ...string) (string, string, error) {
		var audioPath, outputDir string
		audioPath = args[0]
		for i := 0; i < len(args)-1; i++ {
			if args[i] == "--output_dir" {
				outputDir = args[i+1]
			}
		}
		base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
		data, err := json.Marshal(output)
		if err != nil {
			t.Fatalf("marshal stub output: %v", err)
		}
		if err := os.WriteFile(filepath.Join(outputDir, base+".json"), data, 0o644); err != nil {
			t.Fatalf("write stub output: %v", err)
		}
		return "", "", nil
	}
}

func testService(formats []string, runner CommandRunner) *Service {
	cfg := config.Transcription{
		Binary:   "whisper",
		Model:    "base",
		Language: "en",
		Formats:  formats,
	}
	return New(cfg).WithRunner(runner)
}

func TestTranscribeProducesArtifacts(t *testing.T) {
	audio := writeAudioFixture(t)
	outputDir := t.TempDir()
	svc := testService([]string{"txt", "json"}, stubRunner(t, modelOutput{
		Text: " Hello world ",
		Segments: []Segment{
			{Start: 0, End: 1.5, Text: "Hello"},
			{Start: 1.5, End: 3, Text: "world"},
		},
	}))

	result, err := svc.Transcribe(context.Background(), audio, outputDir)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.WordCount != 2 {
		t.Fatalf("WordCount = %d, want 2", result.WordCount)
	}
	if result.Text != "Hello world" {
		t.Fatalf("Text = %q", result.Text)
	}
	if len(result.OutputFiles) != 2 {
		t.Fatalf("OutputFiles = %v", result.OutputFiles)
	}
	txt, err := os.ReadFile(result.OutputFiles["txt"])
	if err != nil {
		t.Fatalf("read txt artifact: %v", err)
	}
	if string(txt) != "Hello world\n" {
		t.Fatalf("txt artifact = %q", txt)
	}
	if _, err := os.Stat(result.OutputFiles["json"]); err != nil {
		t.Fatalf("json artifact missing: %v", err)
	}
}

func TestTranscribeJoinsSegmentsWhenTextMissing(t *testing.T) {
	audio := writeAudioFixture(t)
	svc := testService([]string{"txt"}, stubRunner(t, modelOutput{
		Segments: []Segment{
			{Start: 0, End: 2, Text: " Good evening. "},
			{Start: 2, End: 4, Text: "This is the news."},
		},
	}))

	result, err := svc.Transcribe(context.Background(), audio, t.TempDir())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "Good evening. This is the news." {
		t.Fatalf("Text = %q", result.Text)
	}
	if result.WordCount != 6 {
		t.Fatalf("WordCount = %d, want 6", result.WordCount)
	}
}

func TestTranscribeRendersSRT(t *testing.T) {
	audio := writeAudioFixture(t)
	svc := testService([]string{"srt"}, stubRunner(t, modelOutput{
		Segments: []Segment{
			{Start: 0, End: 1.25, Text: "Hello", Speaker: "SPEAKER_00"},
			{Start: 61.5, End: 63, Text: "Goodbye"},
		},
	}))

	result, err := svc.Transcribe(context.Background(), audio, t.TempDir())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	data, err := os.ReadFile(result.OutputFiles["srt"])
	if err != nil {
		t.Fatalf("read srt artifact: %v", err)
	}
	srt := string(data)
	for _, want := range []string{
		"1\n00:00:00,000 --> 00:00:01,250\nSPEAKER_00: Hello",
		"2\n00:01:01,500 --> 00:01:03,000\nGoodbye",
	} {
		if !strings.Contains(srt, want) {
			t.Fatalf("srt output %q missing %q", srt, want)
		}
	}
	if got := result.Speakers; len(got) != 1 || got[0] != "SPEAKER_00" {
		t.Fatalf("Speakers = %v", got)
	}
}

func TestTranscribeMissingAudio(t *testing.T) {
	svc := testService([]string{"txt"}, func(ctx context.Context, name string, args ...string) (string, string, error) {
		t.Fatal("runner should not be invoked")
		return "", "", nil
	})
	_, err := svc.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.m4a"), t.TempDir())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTranscribeCommandFailure(t *testing.T) {
	audio := writeAudioFixture(t)
	svc := testService([]string{"txt"}, func(ctx context.Context, name string, args ...string) (string, string, error) {
		return "", "CUDA out of memory", errors.New("exit status 1")
	})
	_, err := svc.Transcribe(context.Background(), audio, t.TempDir())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "CUDA out of memory") {
		t.Fatalf("stderr not surfaced: %v", err)
	}
}

func TestTranscribeMissingModelOutput(t *testing.T) {
	audio := writeAudioFixture(t)
	svc := testService([]string{"txt"}, func(ctx context.Context, name string, args ...string) (string, string, error) {
		return "", "", nil
	})
	_, err := svc.Transcribe(context.Background(), audio, t.TempDir())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestDiarizeFlagPassed(t *testing.T) {
	audio := writeAudioFixture(t)
	var captured []string
	runner := func(ctx context.Context, name string, args ...string) (string, string, error) {
		captured = args
		return "", "", errors.New("stop here")
	}
	cfg := config.Transcription{Binary: "whisper", Model: "base", Formats: []string{"txt"}, Diarize: true}
	svc := New(cfg).WithRunner(runner)
	_, _ = svc.Transcribe(context.Background(), audio, t.TempDir())
	if !strings.Contains(strings.Join(captured, " "), "--diarize") {
		t.Fatalf("diarize flag missing from args %v", captured)
	}
}
