// Package content defines the storage abstraction behind the file server.
//
// A Store holds file bodies keyed by their cleaned, root-relative path
// (e.g. "uploads/report.txt"). The serving layer performs path resolution and
// containment checks before a key ever reaches a store, so implementations
// treat keys as opaque. Implementations exist for the local filesystem
// (the default), process memory, BadgerDB and S3-compatible object storage;
// selection happens in pkg/config.
package content

import "context"

// Store is the backend interface for serving and persisting file content.
//
// Thread safety:
// Implementations must be safe for concurrent use by multiple goroutines.
// Concurrent writes to the same key are last-write-wins unless an
// implementation documents stronger guarantees (the filesystem store holds an
// exclusive advisory lock for the duration of each write).
type Store interface {
	// Read returns the full content stored under path.
	// Returns ErrNotFound if nothing is stored there.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write durably stores data under path, replacing any previous
	// content. Implementations must either store the complete data or
	// fail without leaving a partial entry behind.
	Write(ctx context.Context, path string, data []byte) error

	// Remove deletes the content stored under path.
	// Returns ErrNotFound if nothing is stored there.
	Remove(ctx context.Context, path string) error

	// Close releases backend resources. The store must not be used after
	// Close returns.
	Close() error
}
