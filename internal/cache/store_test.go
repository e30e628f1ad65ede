package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name   string
		dbPath string
	}{
		{name: "creates database file", dbPath: filepath.Join(t.TempDir(), "cache.db")},
		{name: "handles in-memory database", dbPath: ":memory:"},
		{name: "creates parent directories", dbPath: filepath.Join(t.TempDir(), "nested", "dir", "cache.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.dbPath)
			require.NoError(t, err)
			defer store.Close()

			version, err := store.GetLatestVersion()
			require.NoError(t, err)
			assert.Equal(t, len(migrations), version)
			assert.Equal(t, tt.dbPath, store.Path())
		})
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.ApplyMigrations(ctx))
	require.NoError(t, store.ApplyMigrations(ctx))

	versions, err := store.GetAppliedVersions(ctx)
	require.NoError(t, err)
	require.Len(t, versions, len(migrations))
	assert.Equal(t, 1, versions[0].Version)
}

func TestReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, Entry{Key: "k", Provider: "gemini", Model: "m", Response: "r"}))
	require.NoError(t, store.Close())

	store, err = NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "r", got)
}

func TestKey(t *testing.T) {
	k := Key("gemini", "flash", "a.py", "print(1)")
	assert.Len(t, k, 64)
	assert.Equal(t, k, Key("gemini", "flash", "a.py", "print(1)"))
	assert.NotEqual(t, k, Key("gemini", "pro", "a.py", "print(1)"))
	assert.NotEqual(t, k, Key("claude", "flash", "a.py", "print(1)"))
	assert.NotEqual(t, k, Key("gemini", "flash", "b.py", "print(1)"))
	assert.NotEqual(t, k, Key("gemini", "flash", "a.py (Chunk 1/2)", "print(1)"))
	assert.NotEqual(t, k, Key("gemini", "flash", "a.py", "print(2)"))
	// field boundaries are part of the key
	assert.NotEqual(t, Key("ab", "c", "p", "x"), Key("a", "bc", "p", "x"))
	assert.NotEqual(t, Key("g", "m", "a.py", "x"), Key("g", "m", "a.p", "yx"))
}

func TestGetPut(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, Entry{Key: "k1", Provider: "gemini", Model: "flash", Response: "first"}))
	require.NoError(t, store.Put(ctx, Entry{Key: "k1", Provider: "gemini", Model: "flash", Response: "second"}))

	got, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got)

	_, _, err = store.Get(ctx, "k1")
	require.NoError(t, err)

	e, err := store.Lookup(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, 2, e.Hits)
	assert.Equal(t, "flash", e.Model)
	assert.False(t, e.CreatedAt.IsZero())

	missing, err := store.Lookup(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPutRequiresKey(t *testing.T) {
	store := setupTestStore(t)
	assert.Error(t, store.Put(context.Background(), Entry{Response: "x"}))
}

func TestStatsAndClear(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, 0, stats.Hits)

	require.NoError(t, store.Put(ctx, Entry{Key: "a", Provider: "gemini", Model: "m", Response: "1"}))
	require.NoError(t, store.Put(ctx, Entry{Key: "b", Provider: "gemini", Model: "m", Response: "2"}))
	require.NoError(t, store.Put(ctx, Entry{Key: "c", Provider: "claude", Model: "s", Response: "3"}))
	_, _, err = store.Get(ctx, "a")
	require.NoError(t, err)

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Entries)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, map[string]int{"gemini": 2, "claude": 1}, stats.Providers)

	n, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}
