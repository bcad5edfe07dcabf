// Package storage opens the key-value store that backs visit history.
package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/wikirec/internal/adapters/driven/storage/badger"
	"github.com/custodia-labs/wikirec/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wikirec/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/wikirec/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
	"github.com/custodia-labs/wikirec/internal/logger"
)

// Open returns the store selected by settings. File-based backends keep
// their data under settings.Path, or their own default when it is empty.
func Open(ctx context.Context, settings domain.StorageSettings) (driven.KeyValueStore, error) {
	logger.Debug("Opening %s history store", settings.Backend)

	switch settings.Backend {
	case domain.StorageBackendSQLite, "":
		s, err := sqlite.NewStore(settings.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}
		return s, nil

	case domain.StorageBackendBadger:
		dir := settings.Path
		if dir != "" {
			dir = filepath.Join(dir, "badger")
		}
		s, err := badger.NewStore(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}
		return s, nil

	case domain.StorageBackendRedis:
		s, err := redis.NewStore(ctx, redisConfig(settings))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}
		return s, nil

	case domain.StorageBackendMemory:
		logger.Warn("history is kept in memory and is lost on exit")
		return memory.NewKVStore(), nil

	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}

func redisConfig(settings domain.StorageSettings) redis.Config {
	return redis.Config{Addr: settings.RedisAddr, Password: settings.RedisPassword}
}
