// Package redis provides a Redis-backed key-value store, for deployments
// where several wikirec processes share one history.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.KeyValueStore = (*Store)(nil)

// DefaultPrefix namespaces every key.
const DefaultPrefix = "wikirec:"

// Config configures the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key (default "wikirec:").
	Prefix string
}

// Store is a Redis key-value store.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore connects and pings the server.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis: address is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if pong != "PONG" {
		client.Close()
		return nil, fmt.Errorf("redis ping: expected PONG, got %s", pong)
	}

	return &Store{client: client, prefix: cfg.Prefix}, nil
}

// Get returns the value under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get key %q: %w", key, err)
	}
	return val, true, nil
}

// Put stores value under key without expiry.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("put key %q: %w", key, err)
	}
	return nil
}

// maxUpdateAttempts bounds retries when another client changes the key
// between WATCH and EXEC.
const maxUpdateAttempts = 64

// Update applies fn under WATCH and writes the result in a MULTI/EXEC
// block, so a concurrent writer makes the transaction fail and retry.
func (s *Store) Update(ctx context.Context, key string, fn driven.UpdateFunc) error {
	k := s.prefix + key
	txf := func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, k).Bytes()
		ok := true
		if errors.Is(err, redis.Nil) {
			old, ok = nil, false
		} else if err != nil {
			return fmt.Errorf("get key %q: %w", key, err)
		}

		value, err := fn(old, ok)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, value, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update key %q: %w", key, redis.TxFailedErr)
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}
