package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".docsift", ConfigFileName), store.Path())
}

func TestConfigStore_SetPersistsNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("ai.mode", "dashscope"))
	require.NoError(t, store.Set("meilisearch.host", "http://localhost:7700"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[ai]")
	assert.Contains(t, string(raw), "[meilisearch]")

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "dashscope", reopened.GetString("ai.mode"))
	assert.Equal(t, []string{"ai.mode", "meilisearch.host"}, reopened.Keys())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	dir := t.TempDir()
	content := `
workers = 4
verbose = true

[scan]
exclude = ["*.tmp", "drafts"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, store.GetInt("workers"))
	assert.True(t, store.GetBool("verbose"))
	assert.Equal(t, []string{"*.tmp", "drafts"}, store.GetStringSlice("scan.exclude"))
	assert.Empty(t, store.GetString("workers"))
	assert.Zero(t, store.GetInt("missing"))
	assert.Nil(t, store.GetStringSlice("workers"))
}

func TestConfigStore_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_ConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("ai", "on"))
	assert.Error(t, store.Set("ai.mode", "off"))
}

func TestFlattenNestRoundTrip(t *testing.T) {
	flat := map[string]any{"a.b.c": int64(1), "a.d": "x", "e": true}
	nested, err := nest(flat)
	require.NoError(t, err)
	assert.Equal(t, flat, flatten(nested, ""))
}

func TestConfigStore_FailedSetIsRolledBack(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("ai", "on"))
	require.Error(t, store.Set("ai.mode", "off"))

	_, ok := store.Get("ai.mode")
	assert.False(t, ok)
	assert.NoError(t, store.Set("other", "x"))
}
