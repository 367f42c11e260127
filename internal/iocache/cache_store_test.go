package iocache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/reposcore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteCacheStore(t *testing.T) *SQLCacheStore {
	t.Helper()
	store, err := NewSQLCacheStore(cacheTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLCacheStore_SetGet(t *testing.T) {
	store := newSQLiteCacheStore(t)

	require.NoError(t, store.Set("repo:golang/go", []byte(`{"score":91}`), 1000, 3600000))

	value, ts, ttl, err := store.Get("repo:golang/go")
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":91}`, string(value))
	assert.Equal(t, int64(1000), ts)
	assert.Equal(t, int64(3600000), ttl)
}

func TestSQLCacheStore_Upsert(t *testing.T) {
	store := newSQLiteCacheStore(t)

	require.NoError(t, store.Set("k", []byte(`1`), 1000, 10))
	require.NoError(t, store.Set("k", []byte(`2`), 2000, 20))

	value, ts, ttl, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "2", string(value))
	assert.Equal(t, int64(2000), ts)
	assert.Equal(t, int64(20), ttl)
}

func TestSQLCacheStore_Miss(t *testing.T) {
	store := newSQLiteCacheStore(t)

	_, _, _, err := store.Get("absent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLCacheStore_DeleteAndClear(t *testing.T) {
	store := newSQLiteCacheStore(t)
	require.NoError(t, store.Set("a", []byte(`1`), 1000, 10))
	require.NoError(t, store.Set("b", []byte(`2`), 1000, 10))

	require.NoError(t, store.Delete("a"))
	require.NoError(t, store.Delete("a"), "deleting a missing key is not an error")
	_, _, _, err := store.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Clear())
	_, _, _, err = store.Get("b")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("c", []byte(`3`), 1000, 10), "table should survive a clear")
}

func TestSQLCacheStore_GetStatus(t *testing.T) {
	store := newSQLiteCacheStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalEntries)

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	require.NoError(t, store.Set("a", []byte(`1`), older.UnixMilli(), 10))
	require.NoError(t, store.Set("b", []byte(`2`), newer.UnixMilli(), 10))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.True(t, status.OldestEntryTime.Equal(older))
	assert.True(t, status.LastEntryTime.Equal(newer))
	assert.Positive(t, status.PersistedBytes)
}

func TestSQLCacheStore_InMemory(t *testing.T) {
	store, err := NewSQLCacheStore(cacheTable, schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Set("k", []byte(`"v"`), 1, 1))
	value, _, _, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, `"v"`, string(value))
}

func TestSQLCacheStore_BackingTwoTierCache(t *testing.T) {
	store := newSQLiteCacheStore(t)
	clock := newFakeClock()

	writer := NewCache[sample](store)
	writer.SetClock(clock.Now)
	writer.Set("repo:golang/go", sample{Name: "go", Score: 91}, time.Hour)

	reader := NewCache[sample](store)
	reader.SetClock(clock.Now)
	got, ok := reader.Get("repo:golang/go")
	require.True(t, ok)
	assert.Equal(t, 91, got.Score)

	clock.Advance(2 * time.Hour)
	_, ok = reader.Get("repo:golang/go")
	assert.False(t, ok)
	_, _, _, err := store.Get("repo:golang/go")
	assert.ErrorIs(t, err, ErrNotFound, "expired row should be deleted")
}

func TestNewSQLCacheStore_InvalidTableName(t *testing.T) {
	_, err := NewSQLCacheStore("cache; DROP TABLE users", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)
}

func TestNewCacheStore(t *testing.T) {
	t.Run("none backend", func(t *testing.T) {
		store, err := NewCacheStore(schema.NoneBackend, "", "")
		require.NoError(t, err)
		assert.Nil(t, store)
	})

	t.Run("file backend", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "cache")
		store, err := NewCacheStore(schema.FileBackend, "", dir)
		require.NoError(t, err)
		require.NotNil(t, store)
		assert.Equal(t, dir, store.(*FileCacheStore).Dir())
	})

	t.Run("sqlite backend", func(t *testing.T) {
		store, err := NewCacheStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "c.db"), "")
		require.NoError(t, err)
		require.NotNil(t, store)
		assert.NoError(t, store.Close())
	})

	t.Run("unsupported backend", func(t *testing.T) {
		store, err := NewCacheStore(schema.DatabaseBackend("redis"), "", "")
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholders(schema.SQLiteBackend, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, "$1, $2, $3", placeholders(schema.PostgreSQLBackend, 3))
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`reposcore_cache`", quoteTableName("reposcore_cache", schema.MySQLBackend))
	assert.Equal(t, `"reposcore_cache"`, quoteTableName("reposcore_cache", schema.PostgreSQLBackend))
	assert.Equal(t, `"reposcore_cache"`, quoteTableName("reposcore_cache", schema.SQLiteBackend))
}
