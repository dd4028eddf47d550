package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, and any missing parents, holding size filler
// bytes. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	WriteSegment(t, path, size, 'B')
}

// WriteSegment writes a disc segment of size bytes all set to fill, so a
// concatenated source shows which segment each byte came from.
func WriteSegment(t testing.TB, path string, size int64, fill byte) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{fill}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
