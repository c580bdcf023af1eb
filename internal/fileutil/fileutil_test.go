package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The News Quiz", "The News Quiz"},
		{"Today: 30/08/2026", "Today 30082026"},
		{"What's Up?!", "Whats Up"},
		{"file_name-ok", "file_name-ok"},
		{"  padded  ", "padded"},
		{"£$%^", ""},
	}
	for _, tc := range cases {
		if got := SanitizeName(tc.in); got != tc.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsGlob(t *testing.T) {
	if !IsGlob("/data/downloads/News/*_m0001abc.*") {
		t.Fatal("expected glob detection for wildcard path")
	}
	if IsGlob("/data/downloads/News/news_m0001abc.m4a") {
		t.Fatal("plain path should not be a glob")
	}
}

func TestResolveGlobSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_m0001abc.m4a", "a_m0001abc.m4a"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	matches, err := ResolveGlob(filepath.Join(dir, "*_m0001abc.*"))
	if err != nil {
		t.Fatalf("ResolveGlob: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if filepath.Base(matches[0]) != "a_m0001abc.m4a" {
		t.Fatalf("matches not sorted: %v", matches)
	}
}

func TestResolveGlobNoMatches(t *testing.T) {
	matches, err := ResolveGlob(filepath.Join(t.TempDir(), "*_nothing.*"))
	if err != nil {
		t.Fatalf("ResolveGlob: %v", err)
	}
	if matches != nil {
		t.Fatalf("expected nil matches, got %v", matches)
	}
}

func TestEnsureDirAndFileExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dirs")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	path := filepath.Join(dir, "audio.m4a")
	if FileExists(path) {
		t.Fatal("file should not exist yet")
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !FileExists(path) {
		t.Fatal("file should exist")
	}
	if FileExists(dir) {
		t.Fatal("directory must not count as a file")
	}
}
