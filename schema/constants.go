// Package schema has the data model shared by every part of reposcore.
package schema

// Custom string types for type safety.
type (
	// Dimension represents one quality dimension of a repository.
	Dimension string

	// Grade represents the letter grade of an overall score.
	Grade string

	// TrendDirection represents the short-term movement between two snapshots.
	TrendDirection string

	// LongRunTrend represents the movement across the retained history window.
	LongRunTrend string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the storage backend for the cache or history.
	DatabaseBackend string
)

// Quality dimensions scored by the engine.
const (
	CodeQualityDimension   Dimension = "code_quality"
	DocumentationDimension Dimension = "documentation"
	TestingDimension       Dimension = "testing"
	CommunityDimension     Dimension = "community"
	SecurityDimension      Dimension = "security"
	DependenciesDimension  Dimension = "dependencies"
)

// Letter grades.
const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Short-term trend directions.
const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// Long-run trend classifications.
const (
	TrendImproving LongRunTrend = "improving"
	TrendDeclining LongRunTrend = "declining"
	TrendSteady    LongRunTrend = "stable"
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
	CSVOut  OutputMode = "csv"
)

// All storage backends supported.
const (
	FileBackend       DatabaseBackend = "file" // default
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllDimensions lists every dimension in storage and display order.
var AllDimensions = []Dimension{
	CodeQualityDimension,
	DocumentationDimension,
	TestingDimension,
	CommunityDimension,
	SecurityDimension,
	DependenciesDimension,
}

// RecommendationOrder is the fixed order in which recommendation rules are evaluated.
var RecommendationOrder = []Dimension{
	DocumentationDimension,
	TestingDimension,
	SecurityDimension,
	CommunityDimension,
	CodeQualityDimension,
	DependenciesDimension,
}

// ValidDimensions lists all valid dimensions.
var ValidDimensions = map[Dimension]struct{}{
	CodeQualityDimension:   {},
	DocumentationDimension: {},
	TestingDimension:       {},
	CommunityDimension:     {},
	SecurityDimension:      {},
	DependenciesDimension:  {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
	CSVOut:  {},
}

// ValidDatabaseBackends lists all valid storage backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	FileBackend:       {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// DimensionLabels holds the human-readable name of each dimension.
var DimensionLabels = map[Dimension]string{
	CodeQualityDimension:   "Code Quality",
	DocumentationDimension: "Documentation",
	TestingDimension:       "Testing",
	CommunityDimension:     "Community",
	SecurityDimension:      "Security",
	DependenciesDimension:  "Dependencies",
}
