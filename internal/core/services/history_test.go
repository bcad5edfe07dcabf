package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikirec/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/metrics"
)

func visit(i int) domain.HistoryEntry {
	return domain.HistoryEntry{
		Title: fmt.Sprintf("Article %d", i),
		URL:   fmt.Sprintf("https://ru.wikipedia.org/wiki?curid=%d", i),
	}
}

func TestHistory_GetUnknownSessionIsEmpty(t *testing.T) {
	svc := NewHistoryService(memory.NewKVStore(), 0, 0)

	entries, err := svc.Get(context.Background(), "never-seen")

	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestHistory_AppendKeepsOrder(t *testing.T) {
	svc := NewHistoryService(memory.NewKVStore(), 10, 5)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e := visit(i)
		require.NoError(t, svc.Append(ctx, "chat-1", e.Title, e.URL))
	}

	entries, err := svc.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.HistoryEntry{visit(0), visit(1), visit(2)}, entries)
}

func TestHistory_EvictsOldestBeyondCapacity(t *testing.T) {
	svc := NewHistoryService(memory.NewKVStore(), 10, 5)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		e := visit(i)
		require.NoError(t, svc.Append(ctx, "chat-1", e.Title, e.URL))
	}

	entries, err := svc.Get(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, entries, 10)
	assert.Equal(t, visit(2), entries[0])
	assert.Equal(t, visit(11), entries[9])
}

func TestHistory_SessionsAreIsolated(t *testing.T) {
	svc := NewHistoryService(memory.NewKVStore(), 10, 5)
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, "a", "Moscow", "url-a"))
	require.NoError(t, svc.Append(ctx, "b", "Kazan", "url-b"))

	a, err := svc.Get(ctx, "a")
	require.NoError(t, err)
	b, err := svc.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []domain.HistoryEntry{{Title: "Moscow", URL: "url-a"}}, a)
	assert.Equal(t, []domain.HistoryEntry{{Title: "Kazan", URL: "url-b"}}, b)
}

func TestHistory_ClearWritesEmptyList(t *testing.T) {
	store := memory.NewKVStore()
	svc := NewHistoryService(store, 10, 5)
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, "chat-1", "Moscow", "url"))
	require.NoError(t, svc.Clear(ctx, "chat-1"))

	entries, err := svc.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	raw, ok, err := store.Get(ctx, "history:chat-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, "[]", string(raw))
}

func TestHistory_ClearUnknownSession(t *testing.T) {
	store := memory.NewKVStore()
	svc := NewHistoryService(store, 10, 5)

	require.NoError(t, svc.Clear(context.Background(), "new"))

	assert.Equal(t, 1, store.Len())
}

func TestHistory_AppendAfterClear(t *testing.T) {
	svc := NewHistoryService(memory.NewKVStore(), 10, 5)
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, "chat-1", "Moscow", "u1"))
	require.NoError(t, svc.Clear(ctx, "chat-1"))
	require.NoError(t, svc.Append(ctx, "chat-1", "Kazan", "u2"))

	entries, err := svc.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.HistoryEntry{{Title: "Kazan", URL: "u2"}}, entries)
}

func TestHistory_PersistedListLongerThanCapacity(t *testing.T) {
	store := memory.NewKVStore()
	ctx := context.Background()
	stored := make([]domain.HistoryEntry, 12)
	for i := range stored {
		stored[i] = visit(i)
	}
	raw, err := json.Marshal(stored)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "history:chat-1", raw))

	svc := NewHistoryService(store, 10, 5)

	entries, err := svc.Get(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, entries, 10)
	assert.Equal(t, visit(2), entries[0])

	require.NoError(t, svc.Append(ctx, "chat-1", "New", "new-url"))
	entries, err = svc.Get(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, entries, 10)
	assert.Equal(t, visit(3), entries[0])
	assert.Equal(t, "New", entries[9].Title)
}

func TestHistory_ConcurrentAppendsSameSession(t *testing.T) {
	svc := NewHistoryService(memory.NewKVStore(), 100, 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := visit(i)
			assert.NoError(t, svc.Append(ctx, "chat-1", e.Title, e.URL))
		}(i)
	}
	wg.Wait()

	entries, err := svc.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Len(t, entries, 50)
	assert.Zero(t, svc.locks.active())
}

func TestHistory_TwoServicesShareOneStore(t *testing.T) {
	store := &slowKVStore{KeyValueStore: memory.NewKVStore(), delay: time.Millisecond}
	first := NewHistoryService(store, 100, 5)
	second := NewHistoryService(store, 100, 5)
	ctx := context.Background()

	const rounds, writers = 5, 20
	for r := 0; r < rounds; r++ {
		session := fmt.Sprintf("chat-%d", r)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			svc := first
			if i%2 == 1 {
				svc = second
			}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				e := visit(i)
				assert.NoError(t, svc.Append(ctx, session, e.Title, e.URL))
			}(i)
		}
		wg.Wait()

		entries, err := first.Get(ctx, session)
		require.NoError(t, err)
		assert.Len(t, entries, writers, session)
	}
	assert.Zero(t, first.consecutiveFailures())
	assert.Zero(t, second.consecutiveFailures())
}

func TestHistory_EmptySessionID(t *testing.T) {
	svc := NewHistoryService(memory.NewKVStore(), 10, 5)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Append(ctx, "", "t", "u"), domain.ErrInvalidInput)
	_, err := svc.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Clear(ctx, ""), domain.ErrInvalidInput)
	assert.Zero(t, svc.consecutiveFailures())
}

func TestHistory_CorruptValue(t *testing.T) {
	store := memory.NewKVStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "history:chat-1", []byte("{not json")))
	svc := NewHistoryService(store, 10, 5)

	_, err := svc.Get(ctx, "chat-1")

	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestHistory_StorageFailuresEscalate(t *testing.T) {
	store := newFailingKVStore()
	svc := NewHistoryService(store, 10, 3)
	ctx := context.Background()

	store.setFail(true)
	for i := 0; i < 2; i++ {
		err := svc.Append(ctx, "chat-1", "t", "u")
		require.ErrorIs(t, err, domain.ErrStorage)
		assert.ErrorIs(t, err, errDiskFull)
	}
	assert.Equal(t, 2, svc.consecutiveFailures())

	_, err := svc.Get(ctx, "chat-1")
	require.ErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, 3, svc.consecutiveFailures())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StorageDegraded))

	store.setFail(false)
	require.NoError(t, svc.Append(ctx, "chat-1", "t", "u"))
	assert.Zero(t, svc.consecutiveFailures())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.StorageDegraded))
}

func TestHistory_FailureMetrics(t *testing.T) {
	store := newFailingKVStore()
	store.setFail(true)
	svc := NewHistoryService(store, 10, 5)
	before := testutil.ToFloat64(metrics.HistoryStorageFailures.WithLabelValues(opHistoryClear))

	require.Error(t, svc.Clear(context.Background(), "chat-1"))

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.HistoryStorageFailures.WithLabelValues(opHistoryClear)))
}
