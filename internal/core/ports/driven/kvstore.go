package driven

import "context"

// UpdateFunc computes the new value from the current one. ok is false when
// the key does not exist. It may be called more than once if a concurrent
// writer wins, so it must not have side effects.
type UpdateFunc func(old []byte, ok bool) ([]byte, error)

// KeyValueStore is durable string-keyed storage.
// Values are opaque bytes; Put replaces any previous value atomically.
type KeyValueStore interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores a value under key.
	Put(ctx context.Context, key string, value []byte) error

	// Update reads, transforms and writes key as one atomic step, also
	// against other processes sharing the store. An error from fn aborts
	// the update and is returned unchanged.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	// Close releases resources.
	Close() error
}
