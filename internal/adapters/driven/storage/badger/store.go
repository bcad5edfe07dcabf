// Package badger provides a BadgerDB-backed key-value store.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.KeyValueStore = (*Store)(nil)

// Store wraps a badger database.
type Store struct {
	db   *badger.DB
	path string
}

// NewStore opens (or creates) a database in dir.
// If dir is empty, defaults to ~/.wikirec/data/badger.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".wikirec", "data", "badger")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &Store{db: db, path: dir}, nil
}

// NewInMemoryStore opens a database that never touches disk.
func NewInMemoryStore() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger db: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreFromDB wraps an already open database. Close closes it.
func NewStoreFromDB(db *badger.DB) *Store {
	return &Store{db: db}
}

// Get returns the value under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var (
		value []byte
		ok    bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		value, ok, err = readTxn(txn, []byte(key))
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("get key %q: %w", key, err)
	}
	return value, ok, nil
}

// Put stores value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("put key %q: %w", key, err)
	}
	return nil
}

// maxUpdateAttempts bounds retries of a transaction that lost a conflict.
const maxUpdateAttempts = 64

// Update applies fn in a read-write transaction, retrying when a concurrent
// transaction committed the same key first.
func (s *Store) Update(ctx context.Context, key string, fn driven.UpdateFunc) error {
	k := []byte(key)
	var err error
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			old, ok, err := readTxn(txn, k)
			if err != nil {
				return err
			}
			value, err := fn(old, ok)
			if err != nil {
				return err
			}
			return txn.Set(k, value)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("update key %q: %w", key, err)
	}
	return err
}

func readTxn(txn *badger.Txn, key []byte) ([]byte, bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

// Path returns the database directory, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
