// Package memory implements in-memory content storage.
//
// Contents are held in a map guarded by a read-write mutex. The store is
// ephemeral and mainly used by tests and throwaway runs; everything is lost
// when the process exits.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/arianaariaei/PyThreadServe/pkg/store/content"
)

// MemoryStore implements content.Store backed by process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	contents map[string][]byte
}

// New creates an empty in-memory store.
func New() *MemoryStore {
	return &MemoryStore{contents: make(map[string][]byte)}
}

// Read returns a copy of the content stored under path.
func (s *MemoryStore) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.contents[path]
	if !ok {
		return nil, fmt.Errorf("content %q: %w", path, content.ErrNotFound)
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write stores a copy of data under path.
func (s *MemoryStore) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.contents[path] = stored
	return nil
}

// Remove deletes the content stored under path.
func (s *MemoryStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contents[path]; !ok {
		return fmt.Errorf("content %q: %w", path, content.ErrNotFound)
	}
	delete(s.contents, path)
	return nil
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contents)
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
