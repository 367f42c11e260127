// Package parquet exports repository history snapshots to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/reposcore/schema"
	"github.com/parquet-go/parquet-go"
)

// SnapshotRow is one history snapshot flattened into a single row.
// This struct maps to the reposcore_history_snapshots database table.
type SnapshotRow struct {
	// RepositoryID is the owner/name of the analyzed repository
	RepositoryID string `parquet:"repository_id,snappy,dict"`

	// Sequence is the position of the snapshot in its history, oldest first
	Sequence int32 `parquet:"sequence,snappy"`

	// SnapshotTime is when the analysis finished
	SnapshotTime time.Time `parquet:"snapshot_time,snappy"`

	// OverallScore is the weighted quality score in [0,100]
	OverallScore int32 `parquet:"overall_score,snappy"`

	// Grade is the letter grade derived from OverallScore
	Grade string `parquet:"grade,snappy,dict"`

	CodeQuality   int32 `parquet:"code_quality,snappy"`
	Documentation int32 `parquet:"documentation,snappy"`
	Testing       int32 `parquet:"testing,snappy"`
	Community     int32 `parquet:"community,snappy"`
	Security      int32 `parquet:"security,snappy"`
	Dependencies  int32 `parquet:"dependencies,snappy"`

	Stars           int32   `parquet:"stars,snappy"`
	Forks           int32   `parquet:"forks,snappy"`
	OpenIssues      int32   `parquet:"open_issues,snappy"`
	Contributors    int32   `parquet:"contributors,snappy"`
	Vulnerabilities int32   `parquet:"vulnerabilities,snappy"`
	CoveragePercent float64 `parquet:"coverage_percent,snappy"`
}

// ConvertHistories flattens histories into rows, preserving snapshot order.
// The grade function is supplied by the caller so this package stays free of scoring logic.
func ConvertHistories(histories []schema.AnalysisHistory, grade func(int) schema.Grade) []SnapshotRow {
	var rows []SnapshotRow
	for _, h := range histories {
		for i, s := range h.Snapshots {
			rows = append(rows, SnapshotRow{
				RepositoryID:    h.RepositoryID,
				Sequence:        int32(i),
				SnapshotTime:    s.Timestamp,
				OverallScore:    int32(s.OverallScore),
				Grade:           string(grade(s.OverallScore)),
				CodeQuality:     int32(s.Breakdown.CodeQuality),
				Documentation:   int32(s.Breakdown.Documentation),
				Testing:         int32(s.Breakdown.Testing),
				Community:       int32(s.Breakdown.Community),
				Security:        int32(s.Breakdown.Security),
				Dependencies:    int32(s.Breakdown.Dependencies),
				Stars:           int32(s.Metrics.Stars),
				Forks:           int32(s.Metrics.Forks),
				OpenIssues:      int32(s.Metrics.OpenIssues),
				Contributors:    int32(s.Metrics.Contributors),
				Vulnerabilities: int32(s.Metrics.Vulnerabilities),
				CoveragePercent: s.Metrics.CoveragePercent,
			})
		}
	}
	return rows
}

// WriteSnapshotsParquet writes rows to a Parquet file at outputPath.
func WriteSnapshotsParquet(rows []SnapshotRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the SnapshotRow struct tags
	writer := parquet.NewGenericWriter[SnapshotRow](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}
