// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// MustChdir changes the current working directory to dir and restores the
// original directory when the test ends. Tests using it must not be parallel.
func MustChdir(t testing.TB, dir string) {
	t.Helper()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("failed to restore directory to %s: %v", originalWd, err)
		}
	})
}

// WriteFiles creates a fresh temporary directory holding files, keyed by
// slash-separated relative path, and returns it. Parent directories are
// created as needed.
func WriteFiles(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for _, rel := range slices.Sorted(maps.Keys(files)) {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(files[rel]), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	return dir
}
