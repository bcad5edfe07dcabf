package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
)

// mockCatalog counts reloads.
type mockCatalog struct {
	reloads atomic.Int32
}

func (m *mockCatalog) Info() (driving.CatalogInfo, error) {
	return driving.CatalogInfo{}, nil
}

func (m *mockCatalog) Reload(_ context.Context) error {
	m.reloads.Add(1)
	return nil
}

func TestNew_NoFiles(t *testing.T) {
	_, err := New(&mockCatalog{}, nil, 0)

	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(&mockCatalog{}, []string{"/non/existent/dir/meta.csv"}, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch")
}

func TestWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	meta := filepath.Join(dir, "meta.csv")
	w, err := New(&mockCatalog{}, []string{meta}, time.Millisecond)
	require.NoError(t, err)
	defer w.fsw.Close()

	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{"write to watched file", fsnotify.Event{Name: meta, Op: fsnotify.Write}, true},
		{"create watched file", fsnotify.Event{Name: meta, Op: fsnotify.Create}, true},
		{"rename watched file", fsnotify.Event{Name: meta, Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: meta, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: meta, Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write}, false},
		{"write and chmod", fsnotify.Event{Name: meta, Op: fsnotify.Write | fsnotify.Chmod}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, w.relevant(tt.event))
		})
	}
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	meta := filepath.Join(dir, "meta.csv")
	require.NoError(t, os.WriteFile(meta, []byte("id,title\n"), 0o644))

	catalog := &mockCatalog{}
	w, err := New(catalog, []string{meta}, 100*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(meta, []byte("id,title\n1,Moscow\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return catalog.reloads.Load() == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), catalog.reloads.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	catalog := &mockCatalog{}
	w, err := New(catalog, []string{filepath.Join(dir, "vectors.npy")}, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)

	assert.Zero(t, catalog.reloads.Load())
}
