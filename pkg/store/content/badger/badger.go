// Package badger implements content storage on BadgerDB.
//
// This backend keeps uploaded and served content in an embedded key-value
// store, which gives persistence across restarts without depending on the
// served directory layout. Keys are the cleaned relative paths prefixed with
// a namespace byte string so future data types can share the database.
package badger

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/arianaariaei/PyThreadServe/pkg/store/content"
)

// keyPrefix namespaces content entries inside the database.
const keyPrefix = "content:"

// BadgerStore implements content.Store on a BadgerDB database.
//
// Thread safety:
// BadgerDB transactions provide isolation; all methods are safe for
// concurrent use.
type BadgerStore struct {
	db *badger.DB
}

// Config configures the BadgerDB content store.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string `mapstructure:"path"`

	// InMemory keeps the whole database in RAM (tests, benchmarks).
	InMemory bool `mapstructure:"in_memory"`
}

// New opens (or creates) the database described by cfg.
func New(ctx context.Context, cfg Config) (*BadgerStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger content store: path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	// Badger's own logger is chatty at INFO; the server has its own logs.
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

func contentKey(path string) []byte {
	return []byte(keyPrefix + path)
}

// Read returns the content stored under path.
func (s *BadgerStore) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(contentKey(path))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("content %q: %w", path, content.ErrNotFound)
		}
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return data, nil
}

// Write stores data under path. The transaction commit makes the write
// durable through Badger's value log.
func (s *BadgerStore) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(contentKey(path), data)
	})
	if err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// Remove deletes the content stored under path.
func (s *BadgerStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(contentKey(path)); err != nil {
			return err
		}
		return txn.Delete(contentKey(path))
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("content %q: %w", path, content.ErrNotFound)
		}
		return fmt.Errorf("remove %q: %w", path, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
