// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/reposcore/schema"
)

// MetadataFetcher returns repository metadata. It is the one collaborator whose
// failure aborts an analysis.
type MetadataFetcher interface {
	GetInfo(ctx context.Context, repo schema.RepositoryCoordinates) (schema.RepositoryInfo, error)
}

// Probe inspects one quality dimension of a repository and returns its fragment.
type Probe[T any] interface {
	Analyze(ctx context.Context, repo schema.RepositoryCoordinates) (T, error)
}

// ProbeSet bundles the six probes consumed by the orchestrator.
type ProbeSet struct {
	CodeQuality   Probe[schema.CodeQualityMetrics]
	Documentation Probe[schema.DocumentationMetrics]
	Testing       Probe[schema.TestingMetrics]
	Community     Probe[schema.CommunityMetrics]
	Security      Probe[schema.SecurityMetrics]
	Dependencies  Probe[schema.DependencyMetrics]
}

// ResultCache is the cache view used by the orchestrator.
type ResultCache interface {
	Get(key string) (schema.AnalysisResult, bool)
	Set(key string, value schema.AnalysisResult, ttl time.Duration)
}

// CacheManager exposes the configured stores.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetCacheStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore is the persisted tier of the cache. Timestamps and TTLs are in milliseconds.
// Get returns an error wrapping iocache.ErrNotFound on a miss.
type CacheStore interface {
	Get(key string) ([]byte, int64, int64, error)
	Set(key string, value []byte, timestamp int64, ttl int64) error
	Delete(key string) error
	Clear() error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore persists one AnalysisHistory per repository.
type HistoryStore interface {
	// Load returns the stored history of a repository, or nil when none exists.
	Load(repositoryID string) (*schema.AnalysisHistory, error)

	// Save replaces the stored history of a repository.
	Save(history *schema.AnalysisHistory) error

	// LoadAll returns every stored history.
	LoadAll() ([]schema.AnalysisHistory, error)

	// Clear removes all stored histories.
	Clear() error

	// GetStatus returns status information about the history store.
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection.
	Close() error
}
