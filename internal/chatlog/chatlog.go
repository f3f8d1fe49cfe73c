// Package chatlog writes the append-only, timestamped line log that
// every chat event is recorded to (spec.md §4.8, §9). Its format is
// byte-for-byte mandated — "YYYY-MM-DD HH:MM:SS - <line>\n" in a file
// named after the server's start time — so it is built directly on
// os.File rather than the ambient zerolog sink used for ops logging;
// zerolog's structured/JSON-oriented writers have no "exact legacy
// line format" mode, and reformatting here would just be a second,
// redundant writer for the same bytes.
package chatlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Sink is a single append-only log file, safe for concurrent writers.
// Mirrors the original's log_fp/log_mutex pair: if the file could not
// be opened, Write becomes a silent no-op rather than a recurring
// error, exactly as log_write behaves when log_fp is NULL.
type Sink struct {
	mu   sync.Mutex
	file *os.File
}

// Open creates dir (mode 0755) if needed and opens a new file inside
// it named after the current local time, "<dir>/YYYYMMDD_HHMMSS.log".
// A failure to create the directory or open the file is reported once,
// and the returned Sink simply discards subsequent writes — matching
// log_init's perror-and-continue behavior rather than aborting startup.
func Open(dir string, now time.Time) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Sink{}, fmt.Errorf("create log directory: %w", err)
	}

	name := now.Format("20060102_150405") + ".log"
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &Sink{}, fmt.Errorf("open log file: %w", err)
	}
	return &Sink{file: f}, nil
}

// Write appends one timestamped line. No-op if the sink has no open
// file (either Open failed, or Close already ran).
func (s *Sink) Write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(s.file, "%s - %s\n", ts, line)
	s.file.Sync()
}

// Close is idempotent.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
