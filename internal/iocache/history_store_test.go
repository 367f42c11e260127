package iocache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistory(id string, scores ...int) *schema.AnalysisHistory {
	base := time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)
	history := &schema.AnalysisHistory{RepositoryID: id}
	for i, score := range scores {
		history.Snapshots = append(history.Snapshots, schema.AnalysisSnapshot{
			Timestamp:    base.Add(time.Duration(i) * 24 * time.Hour),
			OverallScore: score,
			Breakdown: schema.ScoreBreakdown{
				CodeQuality: score, Documentation: score - 1, Testing: score - 2,
				Community: score - 3, Security: score - 4, Dependencies: score - 5,
			},
			Metrics: schema.SnapshotMetrics{
				Stars: 100 * (i + 1), Forks: 10, OpenIssues: 3,
				Contributors: 7, Vulnerabilities: 1, CoveragePercent: 62.5,
			},
		})
	}
	return history
}

// historyStores returns one fresh store per persisted backend testable in-process.
func historyStores(t *testing.T) map[string]contract.HistoryStore {
	t.Helper()
	fileStore, err := NewFileHistoryStore(filepath.Join(t.TempDir(), "history"))
	require.NoError(t, err)

	sqlStore, err := NewSQLHistoryStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlStore.Close() })

	return map[string]contract.HistoryStore{"file": fileStore, "sqlite": sqlStore}
}

func assertSameHistory(t *testing.T, want, got *schema.AnalysisHistory) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.RepositoryID, got.RepositoryID)
	require.Len(t, got.Snapshots, len(want.Snapshots))
	for i := range want.Snapshots {
		assert.True(t, want.Snapshots[i].Timestamp.Equal(got.Snapshots[i].Timestamp), "timestamp %d", i)
		assert.Equal(t, want.Snapshots[i].OverallScore, got.Snapshots[i].OverallScore)
		assert.Equal(t, want.Snapshots[i].Breakdown, got.Snapshots[i].Breakdown)
		assert.Equal(t, want.Snapshots[i].Metrics, got.Snapshots[i].Metrics)
	}
}

func TestHistoryStores_SaveLoad(t *testing.T) {
	for name, store := range historyStores(t) {
		t.Run(name, func(t *testing.T) {
			want := sampleHistory("golang/go", 80, 85, 90)
			require.NoError(t, store.Save(want))

			got, err := store.Load("golang/go")
			require.NoError(t, err)
			assertSameHistory(t, want, got)
		})
	}
}

func TestHistoryStores_LoadMissing(t *testing.T) {
	for name, store := range historyStores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.Load("nobody/nothing")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestHistoryStores_SaveReplaces(t *testing.T) {
	for name, store := range historyStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(sampleHistory("acme/widget", 50, 55, 60, 65)))
			shorter := sampleHistory("acme/widget", 70, 75)
			require.NoError(t, store.Save(shorter))

			got, err := store.Load("acme/widget")
			require.NoError(t, err)
			assertSameHistory(t, shorter, got)
		})
	}
}

func TestHistoryStores_LoadAllAndStatus(t *testing.T) {
	for name, store := range historyStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(sampleHistory("zeta/last", 40)))
			require.NoError(t, store.Save(sampleHistory("alpha/first", 60, 70, 80)))

			all, err := store.LoadAll()
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "alpha/first", all[0].RepositoryID)
			assert.Len(t, all[0].Snapshots, 3)
			assert.Equal(t, "zeta/last", all[1].RepositoryID)

			status, err := store.GetStatus()
			require.NoError(t, err)
			assert.Equal(t, name, status.Backend)
			assert.True(t, status.Connected)
			assert.Equal(t, 2, status.Repositories)
			assert.Equal(t, 4, status.TotalSnapshots)
			assert.True(t, status.OldestSnapshot.Equal(time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)))
			assert.True(t, status.LastSnapshot.Equal(time.Date(2026, 2, 3, 8, 30, 0, 0, time.UTC)))
			assert.Positive(t, status.PersistedBytes)
		})
	}
}

func TestHistoryStores_Clear(t *testing.T) {
	for name, store := range historyStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(sampleHistory("golang/go", 90)))
			require.NoError(t, store.Clear())

			all, err := store.LoadAll()
			require.NoError(t, err)
			assert.Empty(t, all)

			require.NoError(t, store.Save(sampleHistory("golang/go", 91)), "store should accept writes after clear")
		})
	}
}

func TestFileHistoryStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileHistoryStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(sampleHistory("golang/go", 90)))

	body, err := os.ReadFile(filepath.Join(dir, "golang_go.json"))
	require.NoError(t, err)
	assert.Contains(t, string(body), `"repository_id": "golang/go"`)
	assert.Contains(t, string(body), `"timestamp": "2026-02-01T08:30:00Z"`, "timestamps are stored as ISO-8601 strings")
}

func TestFileHistoryStore_SkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileHistoryStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(sampleHistory("golang/go", 90)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken_repo.json"), []byte("{"), 0o644))

	all, err := store.LoadAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = store.Load("broken/repo")
	assert.Error(t, err)
}

func TestNewHistoryStore(t *testing.T) {
	t.Run("none backend", func(t *testing.T) {
		store, err := NewHistoryStore(schema.NoneBackend, "", "")
		require.NoError(t, err)
		assert.Nil(t, store)
	})

	t.Run("sqlite in memory", func(t *testing.T) {
		store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:", "")
		require.NoError(t, err)
		require.NotNil(t, store)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Save(sampleHistory("golang/go", 90)))
		got, err := store.Load("golang/go")
		require.NoError(t, err)
		assert.Len(t, got.Snapshots, 1)
	})

	t.Run("unwritable directory", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		store, err := NewHistoryStore(schema.FileBackend, "", filepath.Join(blocker, "history"))
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}
