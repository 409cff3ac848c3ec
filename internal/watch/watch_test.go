package watch

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sourcemapgo/tracemap/internal/log"
)

func testLogger() log.Logger {
	return log.New("debug", &bytes.Buffer{})
}

func matchesMapSuffix(path string) bool {
	return strings.HasSuffix(path, ".map")
}

func TestWatcherDetectsMatchingFileChange(t *testing.T) {
	tmpDir := t.TempDir()
	mapFile := filepath.Join(tmpDir, "bundle.js.map")

	changed := make(chan string, 10)
	w, err := New(tmpDir, testLogger(), matchesMapSuffix, func(path string) {
		changed <- path
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(mapFile, []byte(`{"version":3}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case path := <-changed:
		if path != mapFile {
			t.Errorf("expected %s, got %s", mapFile, path)
		}
	case <-time.After(1 * time.Second):
		t.Error("timeout waiting for file change event")
	}
}

func TestWatcherIgnoresNonMatchingFiles(t *testing.T) {
	tmpDir := t.TempDir()
	jsFile := filepath.Join(tmpDir, "bundle.js")

	changed := make(chan string, 10)
	w, err := New(tmpDir, testLogger(), matchesMapSuffix, func(path string) {
		changed <- path
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(jsFile, []byte("console.log(1)\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case path := <-changed:
		t.Errorf("should not trigger for non-matching files, got: %s", path)
	case <-time.After(700 * time.Millisecond):
		// expected: no event
	}
}

func TestWatcherDebouncesMultipleChanges(t *testing.T) {
	tmpDir := t.TempDir()
	mapFile := filepath.Join(tmpDir, "bundle.js.map")

	changed := make(chan string, 10)
	w, err := New(tmpDir, testLogger(), matchesMapSuffix, func(path string) {
		changed <- path
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		content := []byte(`{"version":3,"mappings":"` + strings.Repeat("A", i) + `"}`)
		if err := os.WriteFile(mapFile, content, 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	eventCount := 0
	timeout := time.After(1 * time.Second)
loop:
	for {
		select {
		case <-changed:
			eventCount++
		case <-timeout:
			break loop
		}
	}

	if eventCount > 2 {
		t.Errorf("expected 1-2 events due to debouncing, got %d", eventCount)
	}
}

func TestWatcherIgnoresConfiguredDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	for _, dir := range []string{"node_modules", "vendor", ".git", "dist"} {
		if err := os.MkdirAll(filepath.Join(tmpDir, dir), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	w, err := New(tmpDir, testLogger(), matchesMapSuffix, func(path string) {})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	// Implicit assertion: New walked the tree without error and skipped
	// descending into the ignored directories via filepath.SkipDir.
}

func TestWatcherNestedDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "src", "chunks", "vendor-bundle")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	mapFile := filepath.Join(nested, "chunk.js.map")

	changed := make(chan string, 10)
	w, err := New(tmpDir, testLogger(), matchesMapSuffix, func(path string) {
		changed <- path
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(mapFile, []byte(`{"version":3}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case path := <-changed:
		if path != mapFile {
			t.Errorf("expected %s, got %s", mapFile, path)
		}
	case <-time.After(1 * time.Second):
		t.Error("timeout waiting for file change event")
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	tmpDir := t.TempDir()

	w, err := New(tmpDir, testLogger(), matchesMapSuffix, func(path string) {})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close should not error: %v", err)
	}
}

func TestShouldIgnoreHiddenDirectories(t *testing.T) {
	if !shouldIgnore("/a/b/.git") {
		t.Error("expected .git to be ignored")
	}
	if !shouldIgnore("/a/b/node_modules") {
		t.Error("expected node_modules to be ignored")
	}
	if shouldIgnore("/a/b/src") {
		t.Error("expected src not to be ignored")
	}
}
