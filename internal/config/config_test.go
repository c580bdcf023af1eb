package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"radioscribe/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Fetch.Binary != "get_iplayer" {
		t.Fatalf("unexpected fetch binary: %q", cfg.Fetch.Binary)
	}
	if got := cfg.Transcription.Formats; len(got) != 2 || got[0] != "txt" || got[1] != "json" {
		t.Fatalf("unexpected default formats: %v", got)
	}
}

func TestLoadAppliesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
download_dir = "` + filepath.Join(dir, "dl") + `"
transcript_dir = "` + filepath.Join(dir, "tr") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[station]
channels = ["BBC Radio 4", "BBC Radio 3"]

[fetch]
max_per_run = 3

[transcription]
formats = ["txt", "json", "srt"]

[workflow]
queue_poll_interval = 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be used, got %s exists=%v", path, resolved, exists)
	}
	if len(cfg.Station.Channels) != 2 {
		t.Fatalf("unexpected channels: %v", cfg.Station.Channels)
	}
	if cfg.Fetch.MaxPerRun != 3 {
		t.Fatalf("unexpected max_per_run: %d", cfg.Fetch.MaxPerRun)
	}
	if cfg.Workflow.QueuePollInterval != 2 {
		t.Fatalf("unexpected poll interval: %d", cfg.Workflow.QueuePollInterval)
	}
	// Defaults survive for sections the file does not mention.
	if cfg.Workflow.ErrorRetryInterval == 0 {
		t.Fatal("expected default error retry interval")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Transcription.Model != "base" {
		t.Fatalf("unexpected model: %q", cfg.Transcription.Model)
	}
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.Formats = []string{"txt", "docx"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for unknown format")
	}
}

func TestValidateRejectsBadIntervals(t *testing.T) {
	cfg := config.Default()
	cfg.Workflow.QueuePollInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for zero poll interval")
	}
}
