// Package observability provides OpenTelemetry instruments for the analysis
// pipeline and a Prometheus scrape endpoint for them.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricAnalysesTotal    = "reposcore.analyses.total"
	metricAnalysisDuration = "reposcore.analysis.duration.seconds"
	metricCacheHitsTotal   = "reposcore.cache.hits.total"
	metricCacheMissesTotal = "reposcore.cache.misses.total"
	metricProbeFailures    = "reposcore.probe.failures.total"
	metricBatchesTotal     = "reposcore.batches.total"

	attrOutcome   = "outcome"
	attrDimension = "dimension"
)

// Analysis outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeCached  = "cached"
	OutcomeFailed  = "failed"
)

// MeterName is the instrumentation scope of the pipeline.
const MeterName = "github.com/huangsam/reposcore"

// durationBucketBoundaries covers a single repository analysis, from a cache hit to a slow fan-out.
var durationBucketBoundaries = []float64{0.005, 0.05, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// PipelineMetrics holds the instruments recorded by the analysis orchestrator.
// All recording methods are safe to call on a nil receiver.
type PipelineMetrics struct {
	analysesTotal    metric.Int64Counter
	analysisDuration metric.Float64Histogram
	cacheHits        metric.Int64Counter
	cacheMisses      metric.Int64Counter
	probeFailures    metric.Int64Counter
	batchesTotal     metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	b := newMetricBuilder(mt)

	pm := &PipelineMetrics{
		analysesTotal:    b.counter(metricAnalysesTotal, "Repository analyses by outcome", "{analysis}"),
		analysisDuration: b.histogram(metricAnalysisDuration, "Single repository analysis duration in seconds", "s", durationBucketBoundaries...),
		cacheHits:        b.counter(metricCacheHitsTotal, "Result cache hits", "{hit}"),
		cacheMisses:      b.counter(metricCacheMissesTotal, "Result cache misses", "{miss}"),
		probeFailures:    b.counter(metricProbeFailures, "Probe failures replaced by default fragments", "{failure}"),
		batchesTotal:     b.counter(metricBatchesTotal, "Batch analyses run", "{batch}"),
	}

	if b.err != nil {
		return nil, b.err
	}
	return pm, nil
}

// RecordAnalysis records the outcome and duration of one analysis.
func (pm *PipelineMetrics) RecordAnalysis(ctx context.Context, outcome string, duration time.Duration) {
	if pm == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(attrOutcome, outcome))
	pm.analysesTotal.Add(ctx, 1, attrs)
	pm.analysisDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCacheLookup records a result cache hit or miss.
func (pm *PipelineMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if pm == nil {
		return
	}
	if hit {
		pm.cacheHits.Add(ctx, 1)
		return
	}
	pm.cacheMisses.Add(ctx, 1)
}

// RecordProbeFailure records a probe failure for a dimension.
func (pm *PipelineMetrics) RecordProbeFailure(ctx context.Context, dimension string) {
	if pm == nil {
		return
	}
	pm.probeFailures.Add(ctx, 1, metric.WithAttributes(attribute.String(attrDimension, dimension)))
}

// RecordBatch records one completed batch.
func (pm *PipelineMetrics) RecordBatch(ctx context.Context) {
	if pm == nil {
		return
	}
	pm.batchesTotal.Add(ctx, 1)
}
