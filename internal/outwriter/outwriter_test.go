package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func testConfig(output schema.OutputMode) *contract.Config {
	cfg := contract.DefaultConfig()
	cfg.Output = output
	cfg.Width = 120
	return cfg
}

func sampleResult() schema.AnalysisResult {
	return schema.AnalysisResult{
		Repository: schema.RepositoryInfo{
			Owner: "acme", Name: "widget", FullName: "acme/widget",
			URL:         "https://github.com/acme/widget",
			Description: "Widgets for everyone",
			Stars:       12345, Forks: 85, OpenIssues: 14,
			License: "MIT", Language: "Go",
		},
		Score: schema.QualityScore{
			Overall: 84,
			Breakdown: schema.ScoreBreakdown{
				CodeQuality: 90, Documentation: 88, Testing: 75,
				Community: 70, Security: 95, Dependencies: 80,
			},
			Grade:           schema.GradeB,
			Recommendations: []string{"Strengthen testing: add automated tests, raise coverage and run them in CI"},
		},
		Timestamp:  time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
		DurationMs: 1520,
	}
}

func csvRecords(t *testing.T, body string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteResult_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteResult(sampleResult(), testConfig(schema.TextOut)))

	out := buf.String()
	assert.Contains(t, out, "acme/widget  https://github.com/acme/widget")
	assert.Contains(t, out, "Overall: 84/100  Grade: B")
	assert.Contains(t, out, "Code Quality")
	assert.Contains(t, out, "0.20")
	assert.Contains(t, out, "  - Strengthen testing")
	assert.Contains(t, out, "Stars: 12,345")
	assert.Contains(t, out, "License: MIT")
	assert.Contains(t, out, "in 1.52s")
}

func TestWriteResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteResult(sampleResult(), testConfig(schema.JSONOut)))

	var decoded schema.AnalysisResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 84, decoded.Score.Overall)
	assert.Equal(t, schema.GradeB, decoded.Score.Grade)
	assert.Equal(t, int64(1520), decoded.DurationMs)
}

func TestWriteResult_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteResult(sampleResult(), testConfig(schema.CSVOut)))

	records := csvRecords(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, resultsHeader, records[0])
	assert.Equal(t, []string{
		"acme/widget", "84", "B", "90", "88", "75", "70", "95", "80",
		"12345", "85", "14", "2026-04-02T10:00:00Z", "1520", "",
	}, records[1])
}

func TestWriteBatch(t *testing.T) {
	batch := schema.BatchAnalysisResult{
		Total: 2, Completed: 1, Failed: 1,
		Results: []schema.AnalysisResult{sampleResult()},
		Errors:  []schema.BatchError{{Repository: "bad ref", Error: "invalid repository reference"}},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriterTo(&buf).WriteBatch(batch, testConfig(schema.TextOut)))
		out := buf.String()
		assert.Contains(t, out, "acme/widget")
		assert.Contains(t, out, "12,345")
		assert.Contains(t, out, "  - bad ref: invalid repository reference")
		assert.Contains(t, out, "Batch: 2 analyzed, 1 completed, 1 failed")
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriterTo(&buf).WriteBatch(batch, testConfig(schema.CSVOut)))
		records := csvRecords(t, buf.String())
		require.Len(t, records, 3)
		assert.Equal(t, "bad ref", records[2][0])
		assert.Equal(t, "invalid repository reference", records[2][len(resultsHeader)-1])
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriterTo(&buf).WriteBatch(batch, testConfig(schema.JSONOut)))
		var decoded schema.BatchAnalysisResult
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, 2, decoded.Total)
		assert.Len(t, decoded.Errors, 1)
	})
}

func TestWriteBatch_OnlyFailures(t *testing.T) {
	batch := schema.BatchAnalysisResult{
		Total: 1, Failed: 1,
		Errors: []schema.BatchError{{Repository: "x", Error: "boom"}},
	}
	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteBatch(batch, testConfig(schema.TextOut)))
	assert.Contains(t, buf.String(), "Batch: 1 analyzed, 0 completed, 1 failed")
}

func sampleTrends() schema.TrendReport {
	return schema.TrendReport{
		RepositoryID: "acme/widget",
		Current:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		Previous:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Overall:      schema.MetricTrend{Current: 84, Previous: 80, Change: 4, ChangePercent: 5, Trend: schema.TrendUp},
		Dimensions: map[schema.Dimension]schema.MetricTrend{
			schema.TestingDimension:  {Current: 60, Previous: 75, Change: -15, ChangePercent: -20, Trend: schema.TrendDown},
			schema.SecurityDimension: {Current: 90, Previous: 90, Trend: schema.TrendStable},
		},
	}
}

func TestWriteTrends(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriterTo(&buf).WriteTrends(sampleTrends(), testConfig(schema.TextOut)))
		out := buf.String()
		assert.Contains(t, out, "Trends for acme/widget: 2026-04-01T00:00:00Z -> 2026-04-02T00:00:00Z")
		assert.Contains(t, out, "+4.00")
		assert.Contains(t, out, "-20.00%")
		assert.Contains(t, out, "down")
	})

	t.Run("csv keeps overall first then display order", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriterTo(&buf).WriteTrends(sampleTrends(), testConfig(schema.CSVOut)))
		records := csvRecords(t, buf.String())
		require.Len(t, records, 4)
		assert.Equal(t, "Overall", records[1][1])
		assert.Equal(t, "Testing", records[2][1])
		assert.Equal(t, "Security", records[3][1])
		assert.Equal(t, "-15.00", records[2][4])
	})
}

func TestWriteStatistics(t *testing.T) {
	stats := schema.HistoryStatistics{RepositoryID: "acme/widget", Count: 4, Mean: 81.25, Max: 90, Min: 70, Trend: schema.TrendImproving}

	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteStatistics(stats, testConfig(schema.TextOut)))
	assert.Contains(t, buf.String(), "Mean: 81.25")
	assert.Contains(t, buf.String(), "Trend: improving")

	buf.Reset()
	require.NoError(t, NewOutWriterTo(&buf).WriteStatistics(stats, testConfig(schema.CSVOut)))
	records := csvRecords(t, buf.String())
	assert.Equal(t, []string{"acme/widget", "4", "81.25", "90.00", "70.00", "improving"}, records[1])
}

func TestWriteStoreStatus(t *testing.T) {
	cache := schema.CacheStatus{Backend: "file", Connected: true, MemoryEntries: 3, TotalEntries: 1500, PersistedBytes: 2048}
	history := schema.HistoryStatus{Backend: "sqlite", Connected: false}

	var buf bytes.Buffer
	ow := NewOutWriterTo(&buf)
	require.NoError(t, ow.WriteCacheStatus(cache, testConfig(schema.TextOut)))
	assert.Contains(t, buf.String(), "Persisted Entries: 1,500")

	buf.Reset()
	require.NoError(t, ow.WriteHistoryStatus(history, testConfig(schema.CSVOut)))
	records := csvRecords(t, buf.String())
	assert.Equal(t, []string{"sqlite", "false", "0", "0", "", "", "0"}, records[1])

	buf.Reset()
	require.NoError(t, ow.WriteCacheStatus(cache, testConfig(schema.JSONOut)))
	var decoded schema.CacheStatus
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, cache, decoded)
}

func TestWriteWeights(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	formulas := map[schema.Dimension]string{schema.TestingDimension: "40*has_tests"}

	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteWeights(cfg.Weights, formulas, cfg))
	assert.Contains(t, buf.String(), "40*has_tests")
	assert.Contains(t, buf.String(), "Weight sum: 1.00")

	cfg.Output = schema.JSONOut
	buf.Reset()
	require.NoError(t, NewOutWriterTo(&buf).WriteWeights(cfg.Weights, formulas, cfg))
	var rows []weightRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, len(schema.AllDimensions))
	assert.Equal(t, schema.CodeQualityDimension, rows[0].Dimension)
	assert.InDelta(t, 0.20, rows[0].Weight, 1e-9)
}

func TestWriteWithOutputFile(t *testing.T) {
	cfg := testConfig(schema.JSONOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "result.json")

	var buf bytes.Buffer
	require.NoError(t, NewOutWriterTo(&buf).WriteResult(sampleResult(), cfg))
	assert.Empty(t, buf.String(), "nothing should reach stdout")

	body, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"full_name": "acme/widget"`)
}

func TestWriteWithUnwritableOutputFile(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "missing", "out.txt")

	err := NewOutWriterTo(&bytes.Buffer{}).WriteResult(sampleResult(), cfg)
	assert.Error(t, err)
}

func TestGetMaxTableTextWidth(t *testing.T) {
	cfg := testConfig(schema.TextOut)

	cfg.Width = 200
	assert.Equal(t, maxTextWidth, GetMaxTableTextWidth(cfg, 30))

	cfg.Width = 40
	assert.Equal(t, minTextWidth, GetMaxTableTextWidth(cfg, 30))

	cfg.Width = 100
	assert.Equal(t, 60, GetMaxTableTextWidth(cfg, 30))
}
