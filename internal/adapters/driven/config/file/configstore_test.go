package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, name string) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(filepath.Join(t.TempDir(), name))
	require.NoError(t, err)
	require.NotNil(t, store)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docintel.toml")

	store, err := NewConfigStore(path)

	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	assert.Equal(t, FormatTOML, store.format)
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"config.yaml", FormatYAML},
		{"config.YML", FormatYAML},
		{"config.toml", FormatTOML},
		{"config", FormatTOML},
		{"dir.yaml/config.conf", FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFor(tt.path))
		})
	}
}

// number reads a numeric value as float64. TOML decodes integers as int64, YAML as int.
func number(t *testing.T, store *ConfigStore, key string) float64 {
	t.Helper()
	val, ok := store.Get(key)
	require.True(t, ok, "missing %s", key)
	switch v := val.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	}
	t.Fatalf("%s is %T, not a number", key, val)
	return 0
}

func TestConfigStore_Getters(t *testing.T) {
	store := newTestStore(t, "config.toml")

	require.NoError(t, store.Set("string_key", "hello world"))
	require.NoError(t, store.Set("int_key", 42))
	require.NoError(t, store.Set("bool_key", true))

	assert.Equal(t, "hello world", store.GetString("string_key"))
	val, ok := store.Get("bool_key")
	require.True(t, ok)
	assert.Equal(t, true, val)

	assert.Equal(t, "", store.GetString("int_key"))
	assert.Equal(t, "", store.GetString("nonexistent"))

	val, ok = store.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_PersistenceTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docintel.toml")

	store1, err := NewConfigStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.Set("llm.model", "llama-3.1-8b-instant"))
	require.NoError(t, store1.Set("llm.temperature", 0.7))
	require.NoError(t, store1.Set("chunking.chunk_size", 500))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[llm]")
	assert.Contains(t, string(raw), "[chunking]")

	store2, err := NewConfigStore(path)
	require.NoError(t, err)
	assert.Equal(t, "llama-3.1-8b-instant", store2.GetString("llm.model"))
	assert.InDelta(t, 0.7, number(t, store2, "llm.temperature"), 1e-9)
	assert.InDelta(t, 500, number(t, store2, "chunking.chunk_size"), 0)
}

func TestConfigStore_PersistenceYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	store1, err := NewConfigStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.Set("paths.documents", "data/documents"))
	require.NoError(t, store1.Set("retrieval.top_k", 5))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "paths:\n")
	assert.Contains(t, string(raw), "top_k: 5")

	store2, err := NewConfigStore(path)
	require.NoError(t, err)
	assert.Equal(t, "data/documents", store2.GetString("paths.documents"))
	assert.InDelta(t, 5, number(t, store2, "retrieval.top_k"), 0)
}

func TestConfigStore_LoadHandWrittenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
paths:
  documents: docs
chunking:
  chunk_size: 200
  chunk_overlap: 20
llm:
  provider: groq
  temperature: 0.2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	store, err := NewConfigStore(path)
	require.NoError(t, err)

	assert.Equal(t, "docs", store.GetString("paths.documents"))
	assert.InDelta(t, 200, number(t, store, "chunking.chunk_size"), 0)
	assert.InDelta(t, 20, number(t, store, "chunking.chunk_overlap"), 0)
	assert.Equal(t, "groq", store.GetString("llm.provider"))
	assert.InDelta(t, 0.2, number(t, store, "llm.temperature"), 1e-9)
	assert.Equal(t, []string{
		"chunking.chunk_overlap", "chunking.chunk_size", "llm.provider", "llm.temperature", "paths.documents",
	}, store.Keys())
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store := newTestStore(t, "missing.toml")

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)

	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestStore(t, "config.toml")

	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	for _, name := range []string{"config.toml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, []byte("# Just a comment\n\n"), 0o600))

			store, err := NewConfigStore(path)
			require.NoError(t, err)

			_, ok := store.Get("any_key")
			assert.False(t, ok)
		})
	}
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestStore(t, "config.toml")

	done := make(chan bool)
	for i := range 10 {
		go func(id int) {
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetString(key)
			_, _ = store.Get(key)
			done <- true
		}(i)
	}

	for range 10 {
		<-done
	}
	assert.Len(t, store.Keys(), 10)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/config.toml")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"config.toml", "this is not valid TOML {{{[["},
		{"config.yaml", "paths: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.name)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			store, err := NewConfigStore(path)

			assert.Error(t, err)
			assert.Nil(t, store)
		})
	}
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store := newTestStore(t, "config.toml")
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0o700))

	assert.Error(t, store.Set("another", "value"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store := newTestStore(t, "config.toml")

	// Channels cannot be marshalled to TOML
	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_ConflictingKeys(t *testing.T) {
	store := newTestStore(t, "config.toml")

	require.NoError(t, store.Set("llm", "groq"))
	assert.Error(t, store.Set("llm.model", "x"))
}

func TestUnflattenMap(t *testing.T) {
	nested, err := unflattenMap(map[string]any{
		"a.b.c": 1,
		"a.d":   "x",
		"e":     true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
			"d": "x",
		},
		"e": true,
	}, nested)
	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": "x", "e": true}, flattenMap(nested, ""))
}
