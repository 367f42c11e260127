package schema

import "time"

// MaxSnapshotsPerRepository bounds each repository's history.
const MaxSnapshotsPerRepository = 100

// SnapshotMetrics holds the raw metrics retained alongside each snapshot.
type SnapshotMetrics struct {
	Stars           int     `json:"stars"`
	Forks           int     `json:"forks"`
	OpenIssues      int     `json:"open_issues"`
	Contributors    int     `json:"contributors"`
	Vulnerabilities int     `json:"vulnerabilities"`
	CoveragePercent float64 `json:"coverage_percent"`
}

// AnalysisSnapshot is one recorded observation of a repository.
type AnalysisSnapshot struct {
	Timestamp    time.Time       `json:"timestamp"`
	OverallScore int             `json:"overall_score"`
	Breakdown    ScoreBreakdown  `json:"breakdown"`
	Metrics      SnapshotMetrics `json:"metrics"`
}

// AnalysisHistory is the bounded snapshot log of one repository, oldest first.
type AnalysisHistory struct {
	RepositoryID string             `json:"repository_id"`
	Snapshots    []AnalysisSnapshot `json:"snapshots"`
}

// NewSnapshot builds a snapshot from an analysis result.
func NewSnapshot(result AnalysisResult) AnalysisSnapshot {
	return AnalysisSnapshot{
		Timestamp:    result.Timestamp,
		OverallScore: result.Score.Overall,
		Breakdown:    result.Score.Breakdown,
		Metrics: SnapshotMetrics{
			Stars:           result.Repository.Stars,
			Forks:           result.Repository.Forks,
			OpenIssues:      result.Repository.OpenIssues,
			Contributors:    result.Metrics.Community.Contributors,
			Vulnerabilities: result.Metrics.Security.VulnerabilityCount,
			CoveragePercent: result.Metrics.Testing.CoveragePercent,
		},
	}
}

// MetricTrend compares one value across the two most recent snapshots.
type MetricTrend struct {
	Current       float64        `json:"current"`
	Previous      float64        `json:"previous"`
	Change        float64        `json:"change"`
	ChangePercent float64        `json:"change_percent"`
	Trend         TrendDirection `json:"trend"`
}

// TrendReport holds the overall and per-dimension trends of a repository.
type TrendReport struct {
	RepositoryID string                    `json:"repository_id"`
	Current      time.Time                 `json:"current"`
	Previous     time.Time                 `json:"previous"`
	Overall      MetricTrend               `json:"overall"`
	Dimensions   map[Dimension]MetricTrend `json:"dimensions"`
}

// HistoryStatistics summarizes the overall scores across the retained window.
type HistoryStatistics struct {
	RepositoryID string       `json:"repository_id"`
	Count        int          `json:"count"`
	Mean         float64      `json:"mean"`
	Max          float64      `json:"max"`
	Min          float64      `json:"min"`
	Trend        LongRunTrend `json:"trend"`
}
