package testutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// WriteFiles creates files under dir from a path -> content map, making
// parent directories as needed. Paths are slash-separated and relative to
// dir.
func WriteFiles(t testing.TB, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// CaptureLogger returns a text logger writing into the returned buffer.
// Debug records are kept when verbose is set.
func CaptureLogger(verbose bool) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}
