package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SanitizeName reduces a programme title to a filesystem-safe directory
// name. Letters, digits, spaces, underscores and hyphens survive;
// everything else is dropped.
func SanitizeName(name string) string {
	var builder strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == ' ', r == '_', r == '-':
			builder.WriteRune(r)
		}
	}
	return strings.TrimSpace(builder.String())
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// IsGlob reports whether path contains glob metacharacters.
func IsGlob(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

// ResolveGlob expands a glob pattern to concrete paths, sorted for
// deterministic selection. A nil slice means no file matched.
func ResolveGlob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("resolve glob %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
