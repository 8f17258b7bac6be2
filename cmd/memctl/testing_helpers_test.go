package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/memkit/heap/alloc"
	"github.com/joshuapare/memkit/heap/arena"
)

const shortTrace = `20000
2
5
1
a 0 2040
a 1 2040
r 0 4000
f 1
f 0
`

// writeTrace stores a trace in a temp dir and returns its path.
func writeTrace(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write trace: %v", err)
	}
	return path
}

// resetFlags restores global flag values between tests.
func resetFlags(t *testing.T) {
	t.Helper()
	verbose, quiet, jsonOut = false, false, false
	arenaKind = "slice"
	maxSize = arena.DefaultMaxSize
	chunkSize = alloc.DefaultChunkSize
	replayCheck = false
	freqOut = filepath.Join(t.TempDir(), "trace-summary")
	freqTop = 10
	mapStopAt = 0
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return buf.String(), fnErr
}
