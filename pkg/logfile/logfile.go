// Package logfile owns the storage root for session CSV logs. The store
// degrades instead of failing: an unusable root simply means tests run
// unlogged, which the sequencer announces to the operator.
package logfile

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Header is the fixed CSV header of every session log.
const Header = "millis,servo_pos,force"

// Store is the directory session logs live in.
type Store struct {
	dir       string
	available bool
}

// Open mounts the storage root, creating it if needed. Failure is not
// fatal; the store reports unavailable and every session runs unlogged.
func Open(dir string) *Store {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("log storage unavailable at %s: %v", dir, err)
		return &Store{dir: dir}
	}
	return &Store{dir: dir, available: true}
}

// Available reports whether the storage root mounted.
func (s *Store) Available() bool {
	return s.available
}

// Names enumerates existing file names at the root. An unreadable
// directory yields an empty listing, which callers treat as "no existing
// files".
func (s *Store) Names() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

// Create opens a new session log. forcedSync makes every appended row hit
// the medium before Append returns.
func (s *Store) Create(name string, forcedSync bool) (*Writer, error) {
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log %s: %w", name, err)
	}
	return &Writer{f: f, forcedSync: forcedSync}, nil
}

// Writer appends rows to one session log. It is exclusively owned by the
// sequencer for the duration of a session.
type Writer struct {
	f          *os.File
	forcedSync bool
}

// WriteHeader writes the fixed CSV header line.
func (w *Writer) WriteHeader() error {
	if _, err := fmt.Fprintln(w.f, Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return w.maybeSync()
}

// Append writes one sample row: elapsed milliseconds, clamped servo
// position, force. No quoting, newline terminated.
func (w *Writer) Append(elapsed time.Duration, pos int, force float64) error {
	if _, err := fmt.Fprintf(w.f, "%d,%d,%v\n", elapsed.Milliseconds(), pos, force); err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return w.maybeSync()
}

// Close flushes and closes the log file.
func (w *Writer) Close() error {
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("failed to close log: %w", err)
	}
	return nil
}

func (w *Writer) maybeSync() error {
	if !w.forcedSync {
		return nil
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("failed to sync log: %w", err)
	}
	return nil
}
