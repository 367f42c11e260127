// Package core has core logic for repository analysis, scoring and history trends.
package core

import (
	"time"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/internal/observability"
	"golang.org/x/sync/singleflight"
)

// Analyzer orchestrates single and batch repository analyses.
// It is safe for concurrent use.
type Analyzer struct {
	cfg     *contract.Config
	fetcher contract.MetadataFetcher
	probes  contract.ProbeSet
	cache   contract.ResultCache
	history *HistoryTracker
	metrics *observability.PipelineMetrics
	now     func() time.Time

	// inflight collapses concurrent analyses of one repository into a single fan-out
	inflight singleflight.Group
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithCache enables result caching. A nil cache disables it.
func WithCache(cache contract.ResultCache) AnalyzerOption {
	return func(a *Analyzer) {
		a.cache = cache
	}
}

// WithHistory records a snapshot of every fresh result.
func WithHistory(history *HistoryTracker) AnalyzerOption {
	return func(a *Analyzer) {
		a.history = history
	}
}

// WithMetrics records pipeline metrics.
func WithMetrics(metrics *observability.PipelineMetrics) AnalyzerOption {
	return func(a *Analyzer) {
		a.metrics = metrics
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer builds an Analyzer from a validated config and its collaborators.
// Probes left nil in the set always yield their default fragment.
func NewAnalyzer(cfg *contract.Config, fetcher contract.MetadataFetcher, probes contract.ProbeSet, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		cfg:     cfg,
		fetcher: fetcher,
		probes:  probes,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// History returns the tracker the analyzer records into, or nil.
func (a *Analyzer) History() *HistoryTracker {
	return a.history
}
