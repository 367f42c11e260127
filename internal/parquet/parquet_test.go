package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/reposcore/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedGrade(score int) schema.Grade {
	if score >= 90 {
		return schema.GradeA
	}
	return schema.GradeF
}

func sampleHistories() []schema.AnalysisHistory {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []schema.AnalysisHistory{
		{
			RepositoryID: "golang/go",
			Snapshots: []schema.AnalysisSnapshot{
				{
					Timestamp:    base,
					OverallScore: 91,
					Breakdown:    schema.ScoreBreakdown{CodeQuality: 90, Documentation: 94, Testing: 88, Community: 92, Security: 95, Dependencies: 85},
					Metrics:      schema.SnapshotMetrics{Stars: 120000, Forks: 17000, OpenIssues: 9000, Contributors: 100, CoveragePercent: 70},
				},
				{
					Timestamp:    base.Add(24 * time.Hour),
					OverallScore: 93,
					Breakdown:    schema.ScoreBreakdown{CodeQuality: 92, Documentation: 94, Testing: 90, Community: 92, Security: 95, Dependencies: 90},
				},
			},
		},
		{
			RepositoryID: "acme/widget",
			Snapshots: []schema.AnalysisSnapshot{
				{Timestamp: base, OverallScore: 42, Metrics: schema.SnapshotMetrics{Vulnerabilities: 3}},
			},
		},
	}
}

func TestSnapshotRowStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	s := parquet.SchemaOf(new(SnapshotRow))
	require.NotNil(t, s)

	expectedColumns := []string{
		"repository_id", "sequence", "snapshot_time", "overall_score", "grade",
		"code_quality", "documentation", "testing", "community", "security", "dependencies",
		"stars", "forks", "open_issues", "contributors", "vulnerabilities", "coverage_percent",
	}
	for _, colName := range expectedColumns {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestConvertHistories(t *testing.T) {
	rows := ConvertHistories(sampleHistories(), fixedGrade)
	require.Len(t, rows, 3)

	assert.Equal(t, "golang/go", rows[0].RepositoryID)
	assert.Equal(t, int32(0), rows[0].Sequence)
	assert.Equal(t, "A", rows[0].Grade)
	assert.Equal(t, int32(94), rows[0].Documentation)
	assert.Equal(t, int32(120000), rows[0].Stars)

	assert.Equal(t, int32(1), rows[1].Sequence)
	assert.Equal(t, int32(93), rows[1].OverallScore)

	assert.Equal(t, "acme/widget", rows[2].RepositoryID)
	assert.Equal(t, "F", rows[2].Grade)
	assert.Equal(t, int32(3), rows[2].Vulnerabilities)
}

func TestConvertHistories_Empty(t *testing.T) {
	assert.Empty(t, ConvertHistories(nil, fixedGrade))
}

func TestWriteSnapshotsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "snapshots.parquet")
	data := ConvertHistories(sampleHistories(), fixedGrade)

	require.NoError(t, WriteSnapshotsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[SnapshotRow](file)
	defer reader.Close()

	readData := make([]SnapshotRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	require.Equal(t, len(data), n, "Should read all records")

	for i := range data {
		assert.Equal(t, data[i].RepositoryID, readData[i].RepositoryID)
		assert.Equal(t, data[i].Sequence, readData[i].Sequence)
		assert.Equal(t, data[i].OverallScore, readData[i].OverallScore)
		assert.Equal(t, data[i].Grade, readData[i].Grade)
		assert.Equal(t, data[i].Security, readData[i].Security)
		assert.InDelta(t, data[i].CoveragePercent, readData[i].CoveragePercent, 0.001)
		assert.WithinDuration(t, data[i].SnapshotTime, readData[i].SnapshotTime, time.Millisecond, "SnapshotTime should match")
	}
}

func TestWriteSnapshotsParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")

	require.NoError(t, WriteSnapshotsParquet([]SnapshotRow{}, outputPath))

	_, err := os.Stat(outputPath)
	assert.NoError(t, err, "Output file should exist")
}

func TestWriteSnapshotsParquet_BadPath(t *testing.T) {
	err := WriteSnapshotsParquet(nil, filepath.Join(t.TempDir(), "missing", "out.parquet"))
	assert.Error(t, err)
}
