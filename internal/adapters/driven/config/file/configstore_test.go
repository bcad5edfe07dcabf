package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, ConfigFile), store.Path())
	assert.Empty(t, store.Keys())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("wiki.language", "ru"))

	val, ok := store.Get("wiki.language")
	assert.True(t, ok)
	assert.Equal(t, "ru", val)
	assert.Equal(t, "ru", store.GetString("wiki.language"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_GetInt_FromString(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("index.tables", "150"))
	assert.Equal(t, 150, store.GetInt("index.tables"))
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("index.tables", 120))
	require.NoError(t, store.Set("index.backend", "lsh"))
	require.NoError(t, store.Set("history.capacity", 10))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[index]")
	assert.Contains(t, string(raw), "[history]")
	assert.NotContains(t, string(raw), `"index.tables"`)
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("dataset.metadata", "/data/meta.csv"))
	require.NoError(t, store1.Set("index.tables", 120))
	require.NoError(t, store1.Set("index.seed", 7))
	require.NoError(t, store1.Set("mcp.enabled", true))

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/data/meta.csv", store2.GetString("dataset.metadata"))
	assert.Equal(t, 120, store2.GetInt("index.tables"))
	assert.Equal(t, 7, store2.GetInt("index.seed"))
	assert.True(t, store2.GetBool("mcp.enabled"))
	assert.Equal(t, []string{"dataset.metadata", "index.seed", "index.tables", "mcp.enabled"}, store2.Keys())
}

func TestConfigStore_LoadHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte(`
[dataset]
metadata = "meta.csv"
vectors = "vec.npy"

[embedding]
provider = "fasttext"
path = "cc.ru.300.vec"

[wiki]
language = "en"
`)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "vec.npy", store.GetString("dataset.vectors"))
	assert.Equal(t, "fasttext", store.GetString("embedding.provider"))
	assert.Equal(t, "en", store.GetString("wiki.language"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), nil, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("index.probes", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("index.probes")
		}()
	}
	wg.Wait()

	_, ok := store.Get("index.probes")
	assert.True(t, ok)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_Set_WriteFileErrorRollsBack(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
	_, ok := store.Get("another")
	assert.False(t, ok)
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// Channels cannot be marshaled to TOML
	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestNestMap_Conflicts(t *testing.T) {
	got := nestMap(map[string]any{
		"a":     1,
		"a.b":   2,
		"c.d.e": 3,
	})

	assert.Equal(t, 1, got["a"])
	assert.Equal(t, 2, got["a.b"])
	assert.Equal(t, map[string]any{"d": map[string]any{"e": 3}}, got["c"])
}

func TestFlattenMap(t *testing.T) {
	got := flattenMap(map[string]any{
		"index": map[string]any{"tables": int64(5), "lsh": map[string]any{"bits": int64(21)}},
		"top":   "x",
	}, "")

	assert.Equal(t, map[string]any{
		"index.tables":   int64(5),
		"index.lsh.bits": int64(21),
		"top":            "x",
	}, got)
}
