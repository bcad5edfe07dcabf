package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
)

// Ensure KVStore implements the interface.
var _ driven.KeyValueStore = (*KVStore)(nil)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("memory store closed")

// KVStore is a map-backed driven.KeyValueStore.
// Values are copied on the way in and out.
type KVStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewKVStore creates an empty store.
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

// Get returns the value under key.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte{}, v...), true, nil
}

// Put stores value under key.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.data[key] = append([]byte{}, value...)
	return nil
}

// Update applies fn under the store lock.
func (s *KVStore) Update(ctx context.Context, key string, fn driven.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	old, ok := s.data[key]
	if ok {
		old = append([]byte{}, old...)
	}
	value, err := fn(old, ok)
	if err != nil {
		return err
	}
	s.data[key] = append([]byte{}, value...)
	return nil
}

// Len returns the number of keys.
func (s *KVStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close marks the store closed. Later calls fail with ErrClosed.
func (s *KVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
