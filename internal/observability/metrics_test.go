package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/huangsam/reposcore/internal/observability"
)

func setupPipelineMeter(t *testing.T) (*observability.PipelineMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	pm, err := observability.NewPipelineMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return pm, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}
	return nil
}

func sumInt64(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64] data type")

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestPipelineMetrics_RecordAnalysis(t *testing.T) {
	t.Parallel()

	pm, reader := setupPipelineMeter(t)
	ctx := context.Background()

	pm.RecordAnalysis(ctx, observability.OutcomeSuccess, 1500*time.Millisecond)
	pm.RecordAnalysis(ctx, observability.OutcomeCached, time.Millisecond)
	pm.RecordAnalysis(ctx, observability.OutcomeFailed, 200*time.Millisecond)

	rm := collectMetrics(t, reader)

	analyses := findMetric(rm, "reposcore.analyses.total")
	require.NotNil(t, analyses)
	assert.Equal(t, int64(3), sumInt64(t, analyses))

	sum, ok := analyses.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, sum.DataPoints, 3, "one data point per outcome")

	duration := findMetric(rm, "reposcore.analysis.duration.seconds")
	require.NotNil(t, duration)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestPipelineMetrics_CacheAndProbes(t *testing.T) {
	t.Parallel()

	pm, reader := setupPipelineMeter(t)
	ctx := context.Background()

	pm.RecordCacheLookup(ctx, true)
	pm.RecordCacheLookup(ctx, false)
	pm.RecordCacheLookup(ctx, false)
	pm.RecordProbeFailure(ctx, "security")
	pm.RecordBatch(ctx)

	rm := collectMetrics(t, reader)

	hits := findMetric(rm, "reposcore.cache.hits.total")
	require.NotNil(t, hits)
	assert.Equal(t, int64(1), sumInt64(t, hits))

	misses := findMetric(rm, "reposcore.cache.misses.total")
	require.NotNil(t, misses)
	assert.Equal(t, int64(2), sumInt64(t, misses))

	failures := findMetric(rm, "reposcore.probe.failures.total")
	require.NotNil(t, failures)
	assert.Equal(t, int64(1), sumInt64(t, failures))

	batches := findMetric(rm, "reposcore.batches.total")
	require.NotNil(t, batches)
	assert.Equal(t, int64(1), sumInt64(t, batches))
}

func TestPipelineMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var pm *observability.PipelineMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		pm.RecordAnalysis(ctx, observability.OutcomeSuccess, time.Second)
		pm.RecordCacheLookup(ctx, true)
		pm.RecordProbeFailure(ctx, "testing")
		pm.RecordBatch(ctx)
	})
}

func TestPrometheusHandler_ServesMetrics(t *testing.T) {
	t.Parallel()

	provider, handler, err := observability.PrometheusHandler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	pm, err := observability.NewPipelineMetrics(provider.Meter(observability.MeterName))
	require.NoError(t, err)
	pm.RecordCacheLookup(context.Background(), true)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Regexp(t, `reposcore[._]cache[._]hits`, rec.Body.String())
}

func TestNewMetricsServer(t *testing.T) {
	t.Parallel()

	pm, provider, srv, err := observability.NewMetricsServer("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	assert.NotNil(t, pm)
	assert.Equal(t, "127.0.0.1:0", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
}
