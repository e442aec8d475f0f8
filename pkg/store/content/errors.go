package content

import "errors"

// Sentinel errors shared by all store implementations. Implementations wrap
// these with context:
//
//	return fmt.Errorf("content %q: %w", path, content.ErrNotFound)
//
// The serving layer maps them onto HTTP statuses (ErrNotFound and
// ErrEscapesBase → 404, anything else → 500).
var (
	// ErrNotFound indicates no content is stored under the requested path.
	ErrNotFound = errors.New("content not found")

	// ErrEscapesBase indicates the path resolves, after following
	// symlinks, to a location outside the store's base directory. The
	// filesystem store refuses to read or write through such a path.
	ErrEscapesBase = errors.New("path escapes store base")

	// ErrEmptyWrite indicates a write produced no durable bytes. The
	// filesystem store reports this after a write that left a zero-byte
	// file; the partial file is removed before returning.
	ErrEmptyWrite = errors.New("write produced empty content")
)
