package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
)

func TestHistoryCmd_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(ts, "history")

	require.NoError(t, err)
	assert.Contains(t, out, "History is empty.")
}

func TestHistoryCmd_ListsOldestFirst(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.history.entries[DefaultSessionID] = []domain.HistoryEntry{
		{Title: "Moscow", URL: "u1"},
		{Title: "Kazan", URL: "u3"},
	}

	out, err := execute(ts, "history", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "1. Moscow")
	assert.Contains(t, out, "2. Kazan")
	assert.Less(t, strings.Index(out, "Moscow"), strings.Index(out, "Kazan"))
}

func TestHistoryCmd_PerSession(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.history.entries["alice"] = []domain.HistoryEntry{{Title: "Omsk", URL: "u5"}}

	out, err := execute(ts, "history", "--session", "alice")

	require.NoError(t, err)
	assert.Contains(t, out, "Omsk")
}

func TestHistoryCmd_JSONEmptyIsArray(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(ts, "history", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, "[]")
}

func TestHistoryClearCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.history.entries[DefaultSessionID] = []domain.HistoryEntry{{Title: "Moscow", URL: "u1"}}

	out, err := execute(ts, "history", "clear")

	require.NoError(t, err)
	assert.Contains(t, out, "History cleared.")
	entries, _ := ts.history.Get(t.Context(), DefaultSessionID)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
}

func TestHistoryCmd_StorageFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.history.err = domain.ErrStorage

	_, err := execute(ts, "history")

	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestHistoryCmd_OpensOnlyHistoryStore(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)

	SetBootstrap(func(context.Context) (*Services, error) {
		t.Error("history commands must not load the catalog")
		return nil, domain.ErrDataset
	})
	closed := 0
	SetHistoryBootstrap(func(context.Context) (driving.HistoryService, func() error, error) {
		return ts.history, func() error { closed++; return nil }, nil
	})
	ts.history.entries[DefaultSessionID] = []domain.HistoryEntry{{Title: "Moscow", URL: "u1"}}

	out, err := execute(ts, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Moscow")

	out, err = execute(ts, "history", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared.")

	closeServices()
	assert.Equal(t, 1, closed)
}

func TestHistoryCmd_HistoryStoreError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)
	SetHistoryBootstrap(func(context.Context) (driving.HistoryService, func() error, error) {
		return nil, nil, domain.ErrStorage
	})

	_, err := execute(ts, "history")

	assert.ErrorIs(t, err, domain.ErrStorage)
}
