// Package fs implements filesystem-backed content storage.
//
// Content lives directly under a base directory using the key as the relative
// path. Symlinks are resolved before any I/O and the resolved path must stay
// under the base directory; a link pointing outside it is refused. Writes hold
// an exclusive advisory lock (flock) on the destination for their whole
// duration and are fsynced before being reported durable; reads take a shared
// lock. A write that leaves a zero-byte file behind is treated as failed: the
// file is removed and the write reported as ErrEmptyWrite.
package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/arianaariaei/PyThreadServe/pkg/store/content"
)

// FSStore implements content.Store on the local filesystem.
type FSStore struct {
	// basePath is symlink-free (EvalSymlinks ran at construction), so
	// resolved paths compare against it directly.
	basePath string
}

// New creates a filesystem store rooted at basePath, creating the directory
// if needed.
func New(ctx context.Context, basePath string) (*FSStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}

	return &FSStore{basePath: resolved}, nil
}

// BasePath returns the directory the store serves from, with symlinks
// resolved.
func (s *FSStore) BasePath() string {
	return s.basePath
}

func (s *FSStore) filePath(path string) string {
	return filepath.Join(s.basePath, path)
}

// contains reports whether p (already symlink-free) lies under the base
// directory.
func (s *FSStore) contains(p string) bool {
	return p == s.basePath || strings.HasPrefix(p, s.basePath+string(filepath.Separator))
}

// Read returns the content stored under path. Directories and other
// non-regular files report ErrNotFound; paths resolving outside the base
// directory report ErrEscapesBase.
func (s *FSStore) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolved, err := filepath.EvalSymlinks(s.filePath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content %q: %w", path, content.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	if !s.contains(resolved) {
		return nil, fmt.Errorf("content %q: %w", path, content.ErrEscapesBase)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content %q: %w", path, content.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("content %q: %w", path, content.ErrNotFound)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH); err != nil {
		return nil, fmt.Errorf("lock %q: %w", path, err)
	}
	// The lock is dropped when the descriptor closes.

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return data, nil
}

// Write stores data under path. The destination is held under an exclusive
// advisory lock for the whole write and fsynced before returning. Partial
// results are cleaned up on failure. Destinations resolving outside the base
// directory report ErrEscapesBase.
func (s *FSStore) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	filePath := s.filePath(path)

	if dir := filepath.Dir(filePath); dir != s.basePath {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create parent directory for %q: %w", path, err)
		}
	}

	target, err := s.writeTarget(path, filePath)
	if err != nil {
		return err
	}

	// O_NOFOLLOW closes the window between resolving the target and
	// opening it: a symlink swapped in after writeTarget fails the open.
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|unix.O_NOFOLLOW, 0644)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}

	if err := s.writeLocked(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return fmt.Errorf("write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return fmt.Errorf("close %q: %w", path, err)
	}

	// Guard against truncated writes: a zero-byte result is removed and
	// reported as a failure.
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat after write %q: %w", path, err)
	}
	if info.Size() == 0 {
		_ = os.Remove(target)
		return fmt.Errorf("content %q: %w", path, content.ErrEmptyWrite)
	}

	return nil
}

// writeTarget resolves symlinks in the destination and verifies the write
// lands under the base directory. An existing symlink at the destination is
// followed only when its target stays inside the base.
func (s *FSStore) writeTarget(path, filePath string) (string, error) {
	dir, err := filepath.EvalSymlinks(filepath.Dir(filePath))
	if err != nil {
		return "", fmt.Errorf("resolve parent of %q: %w", path, err)
	}
	if !s.contains(dir) {
		return "", fmt.Errorf("content %q: %w", path, content.ErrEscapesBase)
	}

	target := filepath.Join(dir, filepath.Base(filePath))

	info, err := os.Lstat(target)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return target, nil
	}

	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		// Dangling link; refusing beats creating files at its target.
		return "", fmt.Errorf("content %q: %w", path, content.ErrEscapesBase)
	}
	if !s.contains(resolved) {
		return "", fmt.Errorf("content %q: %w", path, content.ErrEscapesBase)
	}
	return resolved, nil
}

func (s *FSStore) writeLocked(f *os.File, data []byte) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	defer func() { _ = unix.Flock(int(f.Fd()), unix.LOCK_UN) }()

	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// Remove deletes the content stored under path. A symlink is removed itself;
// its target is never touched.
func (s *FSStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.filePath(path)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("content %q: %w", path, content.ErrNotFound)
		}
		return fmt.Errorf("remove %q: %w", path, err)
	}
	return nil
}

// Close is a no-op for the filesystem store.
func (s *FSStore) Close() error {
	return nil
}
