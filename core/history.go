package core

import (
	"fmt"
	"slices"
	"sync"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
)

// HistoryTracker keeps bounded per-repository snapshot logs in memory and
// mirrors every change to an optional store.
type HistoryTracker struct {
	mu        sync.Mutex
	histories map[string]*schema.AnalysisHistory
	store     contract.HistoryStore
}

// NewHistoryTracker creates a tracker. A nil store keeps history in memory only.
func NewHistoryTracker(store contract.HistoryStore) *HistoryTracker {
	return &HistoryTracker{
		histories: make(map[string]*schema.AnalysisHistory),
		store:     store,
	}
}

// RecordAnalysis appends a snapshot of result to the history of repo, evicting
// the oldest past the cap, and persists that history. The history is keyed by the
// parsed reference, the same identity the cache uses, not by the names the
// fetcher reports. A save error leaves the in-memory history updated. A load error
// drops the snapshot so the stored history is never overwritten by a partial one.
func (h *HistoryTracker) RecordAnalysis(repo schema.RepositoryCoordinates, result schema.AnalysisResult) error {
	id := repo.String()

	h.mu.Lock()
	defer h.mu.Unlock()

	history, err := h.lookup(id)
	if err != nil {
		return err
	}
	history.Snapshots = append(history.Snapshots, schema.NewSnapshot(result))
	if excess := len(history.Snapshots) - schema.MaxSnapshotsPerRepository; excess > 0 {
		history.Snapshots = slices.Clone(history.Snapshots[excess:])
	}

	if h.store == nil {
		return nil
	}
	if err := h.store.Save(cloneHistory(history)); err != nil {
		return fmt.Errorf("%w: %w", contract.ErrHistoryPersistenceUnavailable, err)
	}
	return nil
}

// GetHistory returns a copy of a repository's history.
func (h *HistoryTracker) GetHistory(owner, name string) (schema.AnalysisHistory, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := historyID(owner, name)
	history, err := h.lookup(id)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("History for %s could not be loaded", id), err)
	}
	if len(history.Snapshots) == 0 {
		return schema.AnalysisHistory{RepositoryID: history.RepositoryID}, false
	}
	return *cloneHistory(history), true
}

// GetTrends compares the two most recent snapshots of a repository.
// It returns ErrInsufficientHistory with fewer than two snapshots.
func (h *HistoryTracker) GetTrends(owner, name string) (schema.TrendReport, error) {
	history, _ := h.GetHistory(owner, name)
	report, err := buildTrendReport(history)
	if err != nil {
		return schema.TrendReport{}, fmt.Errorf("trends for %s: %w", history.RepositoryID, err)
	}
	return report, nil
}

// GetStatistics summarizes every retained snapshot of a repository.
// It returns ErrInsufficientHistory when there are none.
func (h *HistoryTracker) GetStatistics(owner, name string) (schema.HistoryStatistics, error) {
	history, _ := h.GetHistory(owner, name)
	stats, err := buildStatistics(history)
	if err != nil {
		return schema.HistoryStatistics{}, fmt.Errorf("statistics for %s: %w", history.RepositoryID, err)
	}
	return stats, nil
}

// lookup returns the in-memory history of id, loading it from the store on first use.
// A failed load is not remembered, so the next lookup tries the store again; the
// empty history returned with the error is detached from the tracker.
// Callers must hold h.mu.
func (h *HistoryTracker) lookup(id string) (*schema.AnalysisHistory, error) {
	if history, ok := h.histories[id]; ok {
		return history, nil
	}

	history := &schema.AnalysisHistory{RepositoryID: id}
	if h.store != nil {
		stored, err := h.store.Load(id)
		if err != nil {
			return history, fmt.Errorf("%w: loading %s: %w", contract.ErrHistoryPersistenceUnavailable, id, err)
		}
		if stored != nil {
			history.Snapshots = stored.Snapshots
			if excess := len(history.Snapshots) - schema.MaxSnapshotsPerRepository; excess > 0 {
				history.Snapshots = history.Snapshots[excess:]
			}
		}
	}
	h.histories[id] = history
	return history, nil
}

func historyID(owner, name string) string {
	return schema.RepositoryCoordinates{Owner: owner, Name: name}.String()
}

func cloneHistory(history *schema.AnalysisHistory) *schema.AnalysisHistory {
	return &schema.AnalysisHistory{
		RepositoryID: history.RepositoryID,
		Snapshots:    slices.Clone(history.Snapshots),
	}
}
