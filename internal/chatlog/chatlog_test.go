package chatlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOpenCreatesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	sink, err := Open(dir, time.Date(2026, 8, 3, 10, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sink.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "20260803_103000.log" {
		t.Fatalf("unexpected directory contents: %+v", entries)
	}
}

func TestWriteAppendsTimestampedLine(t *testing.T) {
	dir := t.TempDir()
	sink, err := Open(dir, time.Now())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sink.Close()

	sink.Write("hello world")

	matches, _ := filepath.Glob(filepath.Join(dir, "*.log"))
	if len(matches) != 1 {
		t.Fatalf("expected exactly one log file, got %v", matches)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasSuffix(string(data), " - hello world\n") {
		t.Fatalf("unexpected log line: %q", data)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	sink, err := Open(dir, time.Now())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestWriteAfterCloseIsNoop(t *testing.T) {
	dir := t.TempDir()
	sink, _ := Open(dir, time.Now())
	sink.Close()
	sink.Write("should not panic or reopen the file")
}
