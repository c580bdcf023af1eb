package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"radioscribe/internal/catalog"
	"radioscribe/internal/config"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "radioscribe.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
download_dir = %q
transcript_dir = %q
log_dir = %q
`,
		filepath.Join(base, "data"),
		filepath.Join(base, "downloads"),
		filepath.Join(base, "transcripts"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seedShow(t *testing.T, cfgPath string) *catalog.Show {
	t.Helper()
	cfg, _, _, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	show, err := store.AddShow(ctx, &catalog.Show{
		PID:           "m0001abc",
		Title:         "The News Quiz",
		BroadcastDate: "2026-08-20T18:30:00+01:00",
	})
	if err != nil {
		t.Fatalf("add show: %v", err)
	}
	if _, err := store.SaveTranscription(ctx, &catalog.Transcription{
		ShowID:    show.ID,
		Path:      filepath.Join(cfg.Paths.TranscriptDir, "The News Quiz", "show.txt"),
		Format:    "txt",
		WordCount: 120,
		Speakers:  1,
	}); err != nil {
		t.Fatalf("save transcription: %v", err)
	}
	return show
}

func TestRootWithoutCommandFails(t *testing.T) {
	cfgPath := writeTestConfig(t)
	_, err := runCommand(t, "--config", cfgPath)
	if err == nil || !strings.Contains(err.Error(), "no command specified") {
		t.Fatalf("bare invocation should fail, got %v", err)
	}
}

func TestShowDisplaysArtifacts(t *testing.T) {
	cfgPath := writeTestConfig(t)
	show := seedShow(t, cfgPath)

	out, err := runCommand(t, "--config", cfgPath, "show", strconv.FormatInt(show.ID, 10))
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"m0001abc", "The News Quiz", "txt", "120"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}

	// The PID resolves the same entry.
	byPID, err := runCommand(t, "--config", cfgPath, "show", "m0001abc")
	if err != nil {
		t.Fatalf("show by pid: %v", err)
	}
	if !strings.Contains(byPID, "The News Quiz") {
		t.Fatalf("output = %q", byPID)
	}
}

func TestShowUnknownKey(t *testing.T) {
	cfgPath := writeTestConfig(t)
	_, err := runCommand(t, "--config", cfgPath, "show", "m9999zzz")
	if err == nil || !strings.Contains(err.Error(), "no show matching") {
		t.Fatalf("expected lookup failure, got %v", err)
	}
}

func TestRemoveShowDeletesEntry(t *testing.T) {
	cfgPath := writeTestConfig(t)
	show := seedShow(t, cfgPath)

	out, err := runCommand(t, "--config", cfgPath, "remove", strconv.FormatInt(show.ID, 10))
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.Contains(out, "Removed show") {
		t.Fatalf("output = %q", out)
	}

	listed, err := runCommand(t, "--config", cfgPath, "shows")
	if err != nil {
		t.Fatalf("shows: %v", err)
	}
	if !strings.Contains(listed, "No shows found") {
		t.Fatalf("show still listed: %q", listed)
	}
}

func TestShowsEmptyCatalog(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCommand(t, "--config", cfgPath, "shows")
	if err != nil {
		t.Fatalf("shows: %v", err)
	}
	if !strings.Contains(out, "No shows found") {
		t.Fatalf("output = %q", out)
	}
}

func TestShowsRejectsUnknownStatus(t *testing.T) {
	cfgPath := writeTestConfig(t)
	_, err := runCommand(t, "--config", cfgPath, "shows", "--status", "bogus")
	if err == nil || !strings.Contains(err.Error(), "unknown status") {
		t.Fatalf("expected unknown status error, got %v", err)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output = %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Fatalf("sample config missing paths section: %q", data)
	}

	// Second init without --overwrite refuses to clobber.
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestResetStuckOnEmptyCatalog(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCommand(t, "--config", cfgPath, "reset-stuck")
	if err != nil {
		t.Fatalf("reset-stuck: %v", err)
	}
	if !strings.Contains(out, "Reset 0 show(s)") {
		t.Fatalf("output = %q", out)
	}
}

func TestDownloadRequiresSelector(t *testing.T) {
	cfgPath := writeTestConfig(t)
	_, err := runCommand(t, "--config", cfgPath, "download")
	if err == nil || !strings.Contains(err.Error(), "--show-id or --pid") {
		t.Fatalf("expected selector error, got %v", err)
	}
}
