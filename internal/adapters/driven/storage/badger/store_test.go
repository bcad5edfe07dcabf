package badger

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_InMemory(t *testing.T) {
	s, err := NewInMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "history:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "history:1", []byte(`[]`)))
	require.NoError(t, s.Put(ctx, "history:1", []byte(`[{"title":"Moscow","url":"u"}]`)))

	got, ok, err := s.Get(ctx, "history:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"title":"Moscow","url":"u"}]`, string(got))
	assert.Empty(t, s.Path())
}

func TestStore_OnDiskSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.Path())
	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = NewStore(dir)
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(got))
}

func TestStore_CancelledContext(t *testing.T) {
	s, err := NewInMemoryStore()
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Put(ctx, "k", []byte("v")), context.Canceled)
	_, _, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_UpdateConcurrent(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Update(ctx, "counter", func(old []byte, ok bool) ([]byte, error) {
				n := 0
				if ok {
					n, _ = strconv.Atoi(string(old))
				}
				return []byte(strconv.Itoa(n + 1)), nil
			}))
		}()
	}
	wg.Wait()

	got, ok, err := s.Get(ctx, "counter")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "20", string(got))
}

func TestStore_UpdateFuncError(t *testing.T) {
	s, err := NewInMemoryStore()
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()
	errAbort := errors.New("abort")

	err = s.Update(ctx, "k", func(old []byte, ok bool) ([]byte, error) {
		assert.False(t, ok)
		assert.Nil(t, old)
		return nil, errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
