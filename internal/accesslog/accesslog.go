// Package accesslog appends one line per completed request to a shared log
// file. Writers serialize through an in-process mutex plus an advisory file
// lock, so lines from concurrent workers (or concurrent server processes
// sharing the file) never interleave.
package accesslog

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Entry is one completed request record.
type Entry struct {
	Timestamp time.Time
	WorkerID  int
	Method    string
	Path      string
	Status    int
}

// String renders the entry in the log's line format, without the newline.
func (e Entry) String() string {
	return fmt.Sprintf("[%s] Worker %d - %s %s - Status: %d",
		e.Timestamp.Format("2006-01-02 15:04:05"), e.WorkerID, e.Method, e.Path, e.Status)
}

// Log is an append-only request log. It owns the file handle for its
// lifetime.
type Log struct {
	mu sync.Mutex
	f  *os.File
}

// Open opens (or creates) the log file in append mode.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open access log %q: %w", path, err)
	}
	return &Log{f: f}, nil
}

// Append writes one entry. The full lock-write-unlock cycle runs under the
// in-process mutex; the flock covers writers in other processes.
func (l *Log) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("lock access log: %w", err)
	}
	defer func() { _ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN) }()

	if _, err := fmt.Fprintln(l.f, e.String()); err != nil {
		return fmt.Errorf("append access log: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
