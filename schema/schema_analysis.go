package schema

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// RepositoryCoordinates identifies a repository for cache and history keying.
type RepositoryCoordinates struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// String returns the owner/name form.
func (c RepositoryCoordinates) String() string {
	return c.Owner + "/" + c.Name
}

// CacheKey returns the cache key for the repository.
func (c RepositoryCoordinates) CacheKey() string {
	return "repo:" + c.Owner + "/" + c.Name
}

// RepositoryInfo is the metadata returned by the repository fetcher.
type RepositoryInfo struct {
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	OpenIssues  int       `json:"open_issues"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	License     string    `json:"license,omitempty"`
	Language    string    `json:"language,omitempty"`
}

// ScoreBreakdown holds the six dimension scores, each in [0,100].
type ScoreBreakdown struct {
	CodeQuality   int `json:"code_quality"`
	Documentation int `json:"documentation"`
	Testing       int `json:"testing"`
	Community     int `json:"community"`
	Security      int `json:"security"`
	Dependencies  int `json:"dependencies"`
}

// Get returns the score of a single dimension.
func (b ScoreBreakdown) Get(d Dimension) int {
	switch d {
	case CodeQualityDimension:
		return b.CodeQuality
	case DocumentationDimension:
		return b.Documentation
	case TestingDimension:
		return b.Testing
	case CommunityDimension:
		return b.Community
	case SecurityDimension:
		return b.Security
	case DependenciesDimension:
		return b.Dependencies
	default:
		return 0
	}
}

// QualityScore is the graded, explainable output of the scoring engine.
type QualityScore struct {
	Overall         int            `json:"overall"`
	Breakdown       ScoreBreakdown `json:"breakdown"`
	Grade           Grade          `json:"grade"`
	Recommendations []string       `json:"recommendations"`
}

// AnalysisResult is the outcome of one successful repository analysis.
type AnalysisResult struct {
	Repository RepositoryInfo    `json:"repository"`
	Score      QualityScore      `json:"score"`
	Metrics    RepositoryMetrics `json:"metrics"`
	Timestamp  time.Time         `json:"timestamp"`
	DurationMs int64             `json:"duration_ms"`
}

// Clone returns a deep copy of the result that shares no slice or map with r.
func (r AnalysisResult) Clone() AnalysisResult {
	c := r
	c.Score.Recommendations = slices.Clone(r.Score.Recommendations)
	c.Metrics.CodeQuality.Languages = maps.Clone(r.Metrics.CodeQuality.Languages)
	c.Metrics.Testing.TestDirectories = slices.Clone(r.Metrics.Testing.TestDirectories)
	c.Metrics.Testing.CIProviders = slices.Clone(r.Metrics.Testing.CIProviders)
	c.Metrics.Dependencies.ManifestFiles = slices.Clone(r.Metrics.Dependencies.ManifestFiles)
	return c
}

// Coordinates returns the repository coordinates of the result.
func (r AnalysisResult) Coordinates() RepositoryCoordinates {
	return RepositoryCoordinates{Owner: r.Repository.Owner, Name: r.Repository.Name}
}

// BatchError records one failed member of a batch.
type BatchError struct {
	Repository string `json:"repository"`
	Error      string `json:"error"`
}

// BatchAnalysisResult is the outcome of analyzing many repositories.
type BatchAnalysisResult struct {
	Total     int              `json:"total"`
	Completed int              `json:"completed"`
	Failed    int              `json:"failed"`
	Results   []AnalysisResult `json:"results"`
	Errors    []BatchError     `json:"errors"`
}

// Summary returns a one-line description of the batch outcome.
func (b BatchAnalysisResult) Summary() string {
	return fmt.Sprintf("%d analyzed, %d completed, %d failed", b.Total, b.Completed, b.Failed)
}
