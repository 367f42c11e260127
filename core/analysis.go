package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/internal/observability"
	"github.com/huangsam/reposcore/schema"
)

// AnalyzeOne analyzes a single repository reference.
// A cached result within its TTL is returned as-is without invoking any probe.
// Only metadata fetch failures and invalid references fail the analysis; probe
// failures degrade to default fragments.
func (a *Analyzer) AnalyzeOne(ctx context.Context, ref string) (schema.AnalysisResult, error) {
	start := a.now()

	repo, err := contract.ParseRepositoryReference(ref)
	if err != nil {
		a.metrics.RecordAnalysis(ctx, observability.OutcomeFailed, a.now().Sub(start))
		return schema.AnalysisResult{}, contract.AnalysisFailed(ref, err)
	}

	key := repo.CacheKey()
	if a.cache != nil && !shouldRefresh(ctx) {
		cached, ok := a.cache.Get(key)
		a.metrics.RecordCacheLookup(ctx, ok)
		if ok {
			contract.LogDebug("Cache hit", "repository", repo.String())
			a.metrics.RecordAnalysis(ctx, observability.OutcomeCached, a.now().Sub(start))
			return cached, nil
		}
	}

	value, err, shared := a.inflight.Do(key, func() (any, error) {
		return a.analyze(ctx, repo, start)
	})
	if err != nil {
		return schema.AnalysisResult{}, err
	}
	result := value.(schema.AnalysisResult)
	if shared {
		contract.LogDebug("Joined in-flight analysis", "repository", repo.String())
		result = result.Clone()
	}
	return result, nil
}

// analyze runs one fan-out for repo, then scores, caches and records the result.
func (a *Analyzer) analyze(ctx context.Context, repo schema.RepositoryCoordinates, start time.Time) (schema.AnalysisResult, error) {
	info, metrics, err := a.collect(ctx, repo)
	if err != nil {
		a.metrics.RecordAnalysis(ctx, observability.OutcomeFailed, a.now().Sub(start))
		return schema.AnalysisResult{}, contract.AnalysisFailed(repo.String(), err)
	}

	score := ComputeQualityScore(metrics, a.cfg.Weights)

	// Duration is stamped before caching so cached and returned copies are identical
	end := a.now()
	result := schema.AnalysisResult{
		Repository: info,
		Score:      score,
		Metrics:    metrics,
		Timestamp:  end.UTC(),
		DurationMs: end.Sub(start).Milliseconds(),
	}

	if a.cache != nil {
		a.cache.Set(repo.CacheKey(), result, a.cfg.CacheTTL)
	}

	if a.history != nil && !shouldSkipHistory(ctx) {
		if err := a.history.RecordAnalysis(repo, result); err != nil {
			contract.LogWarn("History snapshot not persisted", err)
		}
	}

	a.metrics.RecordAnalysis(ctx, observability.OutcomeSuccess, a.now().Sub(start))
	return result, nil
}

// AnalyzeMany analyzes up to MaxReposPerBatch references in sequential windows
// of Concurrency members each. It never fails; per-item errors are returned as data.
func (a *Analyzer) AnalyzeMany(ctx context.Context, refs []string) schema.BatchAnalysisResult {
	refs = refs[:min(len(refs), a.cfg.MaxReposPerBatch)]
	window := max(a.cfg.Concurrency, 1)

	batch := schema.BatchAnalysisResult{
		Total:   len(refs),
		Results: make([]schema.AnalysisResult, 0, len(refs)),
		Errors:  []schema.BatchError{},
	}

	type outcome struct {
		result schema.AnalysisResult
		err    error
	}

	for start := 0; start < len(refs); start += window {
		members := refs[start:min(start+window, len(refs))]
		outcomes := make([]outcome, len(members))

		var wg sync.WaitGroup
		for i, ref := range members {
			wg.Go(func() {
				outcomes[i].result, outcomes[i].err = a.AnalyzeOne(ctx, ref)
			})
		}
		wg.Wait()

		for i, o := range outcomes {
			if o.err != nil {
				batch.Errors = append(batch.Errors, schema.BatchError{Repository: members[i], Error: o.err.Error()})
				continue
			}
			batch.Results = append(batch.Results, o.result)
		}
		contract.LogDebug("Batch window settled", "start", start, "size", len(members))
	}

	batch.Completed = len(batch.Results)
	batch.Failed = len(batch.Errors)
	a.metrics.RecordBatch(ctx)
	return batch
}

// collect fetches metadata and runs all six probes concurrently, waiting for every one.
func (a *Analyzer) collect(ctx context.Context, repo schema.RepositoryCoordinates) (schema.RepositoryInfo, schema.RepositoryMetrics, error) {
	var (
		wg      sync.WaitGroup
		info    schema.RepositoryInfo
		infoErr error
		m       schema.RepositoryMetrics
	)

	wg.Go(func() {
		info, infoErr = a.fetcher.GetInfo(ctx, repo)
	})
	wg.Go(func() {
		m.CodeQuality = runProbe(ctx, a, schema.CodeQualityDimension, a.probes.CodeQuality, repo, schema.DefaultCodeQualityMetrics)
	})
	wg.Go(func() {
		m.Documentation = runProbe(ctx, a, schema.DocumentationDimension, a.probes.Documentation, repo, schema.DefaultDocumentationMetrics)
	})
	wg.Go(func() {
		m.Testing = runProbe(ctx, a, schema.TestingDimension, a.probes.Testing, repo, schema.DefaultTestingMetrics)
	})
	wg.Go(func() {
		m.Community = runProbe(ctx, a, schema.CommunityDimension, a.probes.Community, repo, schema.DefaultCommunityMetrics)
	})
	wg.Go(func() {
		m.Security = runProbe(ctx, a, schema.SecurityDimension, a.probes.Security, repo, schema.DefaultSecurityMetrics)
	})
	wg.Go(func() {
		m.Dependencies = runProbe(ctx, a, schema.DependenciesDimension, a.probes.Dependencies, repo, schema.DefaultDependencyMetrics)
	})
	wg.Wait()

	if infoErr != nil {
		return schema.RepositoryInfo{}, schema.RepositoryMetrics{}, fmt.Errorf("%w: %w", contract.ErrMetadataFetchFailed, infoErr)
	}

	if info.Owner == "" || info.Name == "" {
		info.Owner, info.Name = repo.Owner, repo.Name
	}
	if info.FullName == "" {
		info.FullName = repo.String()
	}
	return info, m, nil
}

// runProbe invokes a probe and substitutes the default fragment when it fails.
func runProbe[T any](
	ctx context.Context,
	a *Analyzer,
	dimension schema.Dimension,
	probe contract.Probe[T],
	repo schema.RepositoryCoordinates,
	fallback func() T,
) T {
	if probe == nil {
		return fallback()
	}
	fragment, err := probe.Analyze(ctx, repo)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Probe %s failed for %s", dimension, repo), fmt.Errorf("%w: %w", contract.ErrProbeFailed, err))
		a.metrics.RecordProbeFailure(ctx, string(dimension))
		return fallback()
	}
	return fragment
}
