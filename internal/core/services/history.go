package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/goccy/go-json"

	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
	"github.com/custodia-labs/wikirec/internal/logger"
	"github.com/custodia-labs/wikirec/internal/metrics"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

const historyKeyPrefix = "history:"

// History operation names used in logs and metrics.
const (
	opHistoryAppend = "append"
	opHistoryGet    = "get"
	opHistoryClear  = "clear"
)

// HistoryService keeps a bounded visit log per session in a key-value store.
// Writes for one session are serialised; sessions do not block each other.
type HistoryService struct {
	store         driven.KeyValueStore
	capacity      int
	escalateAfter int
	locks         *keyedMutex
	failures      atomic.Int64
}

// NewHistoryService creates a history service. Non-positive capacity and
// escalateAfter fall back to the defaults.
func NewHistoryService(store driven.KeyValueStore, capacity, escalateAfter int) *HistoryService {
	if capacity <= 0 {
		capacity = domain.DefaultHistoryCapacity
	}
	if escalateAfter <= 0 {
		escalateAfter = domain.DefaultEscalateAfter
	}
	return &HistoryService{
		store:         store,
		capacity:      capacity,
		escalateAfter: escalateAfter,
		locks:         newKeyedMutex(),
	}
}

// Append records a visit, evicting the oldest when the history is full.
// The read-modify-write runs as one store update, so appends from other
// processes sharing the store are not lost either.
func (s *HistoryService) Append(ctx context.Context, sessionID, title, url string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: empty session id", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	entry := domain.HistoryEntry{Title: title, URL: url}
	err := s.update(ctx, sessionID, func(entries []domain.HistoryEntry) []domain.HistoryEntry {
		h := domain.HistoryFromEntries(s.capacity, entries)
		if h.Append(entry) {
			logger.Debug("history %s full, evicted oldest entry", sessionID)
		}
		return h.Entries()
	})
	return s.observe(opHistoryAppend, sessionID, err)
}

// Get returns the visits oldest first. A session that was never recorded
// or was cleared yields an empty slice.
func (s *HistoryService) Get(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", domain.ErrInvalidInput)
	}

	raw, ok, err := s.store.Get(ctx, historyKey(sessionID))
	var entries []domain.HistoryEntry
	if err != nil {
		err = fmt.Errorf("%w: read history: %w", domain.ErrStorage, err)
	} else {
		entries, err = decodeHistory(raw, ok)
	}
	if err = s.observe(opHistoryGet, sessionID, err); err != nil {
		return nil, err
	}
	// A list persisted under a larger capacity keeps only its newest entries.
	return domain.HistoryFromEntries(s.capacity, entries).Entries(), nil
}

// Clear replaces the session's history with an empty list. The key is
// kept, so a cleared session reads the same as a new one.
func (s *HistoryService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: empty session id", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	raw, err := json.Marshal([]domain.HistoryEntry{})
	if err == nil {
		err = s.store.Put(ctx, historyKey(sessionID), raw)
	}
	if err != nil {
		err = fmt.Errorf("%w: write history: %w", domain.ErrStorage, err)
	}
	return s.observe(opHistoryClear, sessionID, err)
}

// update rewrites the session's entries atomically in the store.
func (s *HistoryService) update(
	ctx context.Context,
	sessionID string,
	fn func([]domain.HistoryEntry) []domain.HistoryEntry,
) error {
	err := s.store.Update(ctx, historyKey(sessionID), func(old []byte, ok bool) ([]byte, error) {
		entries, err := decodeHistory(old, ok)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(fn(entries))
		if err != nil {
			return nil, fmt.Errorf("%w: encode history: %w", domain.ErrStorage, err)
		}
		return raw, nil
	})
	if err != nil && !errors.Is(err, domain.ErrStorage) {
		err = fmt.Errorf("%w: write history: %w", domain.ErrStorage, err)
	}
	return err
}

func decodeHistory(raw []byte, ok bool) ([]domain.HistoryEntry, error) {
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var entries []domain.HistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode history: %w", domain.ErrStorage, err)
	}
	return entries, nil
}

// observe records the outcome of one operation and tracks consecutive
// storage failures. Crossing escalateAfter marks storage as degraded
// until the next success.
func (s *HistoryService) observe(op, sessionID string, err error) error {
	metrics.RecordHistoryOperation(op, err)

	if err == nil {
		if s.failures.Swap(0) >= int64(s.escalateAfter) {
			metrics.SetStorageDegraded(false)
			logger.Info("history storage recovered")
		}
		return nil
	}
	if !errors.Is(err, domain.ErrStorage) {
		return err
	}

	n := s.failures.Add(1)
	logger.L().Warn().
		Err(err).
		Str("session", sessionID).
		Str("operation", op).
		Int64("consecutive_failures", n).
		Msg("history storage failure")

	if n == int64(s.escalateAfter) {
		metrics.SetStorageDegraded(true)
		logger.Error(err, "storage degraded: %d consecutive history failures", n)
	}
	return err
}

// consecutiveFailures returns the current run of storage failures.
func (s *HistoryService) consecutiveFailures() int {
	return int(s.failures.Load())
}

func historyKey(sessionID string) string {
	return historyKeyPrefix + sessionID
}
