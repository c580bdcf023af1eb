package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteAudioFile drops a small placeholder audio file at path, creating
// parent directories as needed, and returns the path.
func WriteAudioFile(t testing.TB, path string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("RIFF-placeholder"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
