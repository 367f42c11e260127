package core

import (
	"math"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Trend thresholds in percent.
const (
	shortTermThreshold = 1.0
	longRunThreshold   = 2.0
)

// compareValues computes the change between two observations.
// A zero previous value yields a stable trend with no change.
func compareValues(current, previous float64) schema.MetricTrend {
	trend := schema.MetricTrend{
		Current:  current,
		Previous: previous,
		Trend:    schema.TrendStable,
	}
	if previous == 0 {
		return trend
	}

	trend.Change = current - previous
	trend.ChangePercent = trend.Change / math.Abs(previous) * 100
	switch {
	case trend.ChangePercent > shortTermThreshold:
		trend.Trend = schema.TrendUp
	case trend.ChangePercent < -shortTermThreshold:
		trend.Trend = schema.TrendDown
	}
	return trend
}

// buildTrendReport compares the two most recent snapshots of a history.
func buildTrendReport(history schema.AnalysisHistory) (schema.TrendReport, error) {
	n := len(history.Snapshots)
	if n < 2 {
		return schema.TrendReport{}, contract.ErrInsufficientHistory
	}
	current, previous := history.Snapshots[n-1], history.Snapshots[n-2]

	report := schema.TrendReport{
		RepositoryID: history.RepositoryID,
		Current:      current.Timestamp,
		Previous:     previous.Timestamp,
		Overall:      compareValues(float64(current.OverallScore), float64(previous.OverallScore)),
		Dimensions:   make(map[schema.Dimension]schema.MetricTrend, len(schema.AllDimensions)),
	}
	for _, d := range schema.AllDimensions {
		report.Dimensions[d] = compareValues(float64(current.Breakdown.Get(d)), float64(previous.Breakdown.Get(d)))
	}
	return report, nil
}

// buildStatistics summarizes overall scores across the retained window.
func buildStatistics(history schema.AnalysisHistory) (schema.HistoryStatistics, error) {
	if len(history.Snapshots) == 0 {
		return schema.HistoryStatistics{}, contract.ErrInsufficientHistory
	}

	scores := make([]float64, len(history.Snapshots))
	for i, s := range history.Snapshots {
		scores[i] = float64(s.OverallScore)
	}

	return schema.HistoryStatistics{
		RepositoryID: history.RepositoryID,
		Count:        len(scores),
		Mean:         stat.Mean(scores, nil),
		Max:          floats.Max(scores),
		Min:          floats.Min(scores),
		Trend:        longRunTrend(scores),
	}, nil
}

// longRunTrend compares the averages of the two halves of a series.
// The second half holds the extra element of an odd-length series.
func longRunTrend(scores []float64) schema.LongRunTrend {
	if len(scores) < 2 {
		return schema.TrendSteady
	}
	mid := len(scores) / 2
	first := stat.Mean(scores[:mid], nil)
	second := stat.Mean(scores[mid:], nil)
	if first == 0 {
		return schema.TrendSteady
	}

	change := (second - first) / math.Abs(first) * 100
	switch {
	case change > longRunThreshold:
		return schema.TrendImproving
	case change < -longRunThreshold:
		return schema.TrendDeclining
	default:
		return schema.TrendSteady
	}
}
