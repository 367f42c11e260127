package schema

import "time"

// CacheStatus represents the status of the two-tier cache.
type CacheStatus struct {
	Backend          string    `json:"backend"`
	Connected        bool      `json:"connected"`
	MemoryEntries    int       `json:"memory_entries"`
	TotalEntries     int       `json:"total_entries"`
	LastEntryTime    time.Time `json:"last_entry_time"`
	OldestEntryTime  time.Time `json:"oldest_entry_time"`
	PersistedBytes   int64     `json:"persisted_bytes"`
	PersistenceError string    `json:"persistence_error,omitempty"`
}

// HistoryStatus represents the status of the history store.
type HistoryStatus struct {
	Backend        string    `json:"backend"`
	Connected      bool      `json:"connected"`
	Repositories   int       `json:"repositories"`
	TotalSnapshots int       `json:"total_snapshots"`
	LastSnapshot   time.Time `json:"last_snapshot"`
	OldestSnapshot time.Time `json:"oldest_snapshot"`
	PersistedBytes int64     `json:"persisted_bytes"`
}
