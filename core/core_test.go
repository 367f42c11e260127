package core

import (
	"context"
	"testing"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/internal/iocache"
	"github.com/huangsam/reposcore/internal/observability"
	"github.com/huangsam/reposcore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewAnalyzer_Defaults(t *testing.T) {
	a := NewAnalyzer(testConfig(), &fakeFetcher{}, contract.ProbeSet{})

	assert.Nil(t, a.History(), "history is opt-in")
	assert.Nil(t, a.cache)
	assert.Nil(t, a.metrics)
	require.NotNil(t, a.now)
}

func TestNewAnalyzer_Options(t *testing.T) {
	history := NewHistoryTracker(nil)
	cache := iocache.NewCache[schema.AnalysisResult](nil)
	clock := steppingClock(testStart, 0)

	a := NewAnalyzer(testConfig(), &fakeFetcher{}, contract.ProbeSet{},
		WithHistory(history), WithCache(cache), WithClock(clock))

	assert.Same(t, history, a.History())
	assert.Same(t, cache, a.cache)
	assert.Equal(t, testStart, a.now())
}

// counterTotals sums every Int64 counter the reader has collected, by instrument name.
func counterTotals(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	return totals
}

func TestAnalyzer_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	pm, err := observability.NewPipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	fetcher := &fakeFetcher{failures: map[string]bool{"acme/ghost": true}}
	a := NewAnalyzer(testConfig(), fetcher, contract.ProbeSet{},
		WithCache(iocache.NewCache[schema.AnalysisResult](nil)),
		WithMetrics(pm),
		WithClock(steppingClock(testStart, 0)))

	ctx := context.Background()
	_, err = a.AnalyzeOne(ctx, "acme/widget")
	require.NoError(t, err)
	_, err = a.AnalyzeOne(ctx, "acme/widget")
	require.NoError(t, err)
	batch := a.AnalyzeMany(ctx, []string{"acme/ghost", "not a repo"})
	assert.Equal(t, 2, batch.Failed)

	totals := counterTotals(t, reader)
	assert.Equal(t, int64(4), totals["reposcore.analyses.total"])
	assert.Equal(t, int64(1), totals["reposcore.cache.hits.total"])
	assert.Equal(t, int64(2), totals["reposcore.cache.misses.total"], "the invalid reference never reaches the cache")
	assert.Equal(t, int64(1), totals["reposcore.batches.total"])
	assert.Equal(t, 2, len(fetcher.calls), "the cached analysis skips the fetcher")
}
