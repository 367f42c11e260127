// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/internal/iocache"
	"github.com/huangsam/reposcore/schema"
)

// OutWriter provides a unified interface for all output operations.
// Every method dispatches on cfg.Output and writes to cfg.OutputFile when set.
type OutWriter struct {
	stdout io.Writer
}

// NewOutWriter creates a new instance of the output writer on stdout.
func NewOutWriter() *OutWriter {
	return &OutWriter{stdout: os.Stdout}
}

// NewOutWriterTo creates an output writer whose default destination is w.
func NewOutWriterTo(w io.Writer) *OutWriter {
	return &OutWriter{stdout: w}
}

// WriteResult prints a single analysis result.
func (ow *OutWriter) WriteResult(result schema.AnalysisResult, cfg *contract.Config) error {
	return ow.dispatch(cfg, "Wrote analysis result",
		func(w io.Writer) error { return writeJSON(w, result) },
		func(w io.Writer) error { return writeResultsCSV(w, []schema.AnalysisResult{result}, nil) },
		func(w io.Writer) error { return writeResultText(w, result, cfg) },
	)
}

// WriteBatch prints the results and failures of a batch.
func (ow *OutWriter) WriteBatch(batch schema.BatchAnalysisResult, cfg *contract.Config) error {
	return ow.dispatch(cfg, "Wrote batch results",
		func(w io.Writer) error { return writeJSON(w, batch) },
		func(w io.Writer) error { return writeResultsCSV(w, batch.Results, batch.Errors) },
		func(w io.Writer) error { return writeBatchText(w, batch, cfg) },
	)
}

// WriteTrends prints a trend report.
func (ow *OutWriter) WriteTrends(report schema.TrendReport, cfg *contract.Config) error {
	return ow.dispatch(cfg, "Wrote trend report",
		func(w io.Writer) error { return writeJSON(w, report) },
		func(w io.Writer) error { return writeTrendsCSV(w, report) },
		func(w io.Writer) error { return writeTrendsText(w, report) },
	)
}

// WriteStatistics prints history statistics.
func (ow *OutWriter) WriteStatistics(stats schema.HistoryStatistics, cfg *contract.Config) error {
	return ow.dispatch(cfg, "Wrote history statistics",
		func(w io.Writer) error { return writeJSON(w, stats) },
		func(w io.Writer) error { return writeStatisticsCSV(w, stats) },
		func(w io.Writer) error { return writeStatisticsText(w, stats) },
	)
}

// WriteCacheStatus prints cache status.
func (ow *OutWriter) WriteCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	return ow.dispatch(cfg, "Wrote cache status",
		func(w io.Writer) error { return writeJSON(w, status) },
		func(w io.Writer) error { return writeCacheStatusCSV(w, status) },
		func(w io.Writer) error { iocache.PrintCacheStatus(w, status); return nil },
	)
}

// WriteHistoryStatus prints history store status.
func (ow *OutWriter) WriteHistoryStatus(status schema.HistoryStatus, cfg *contract.Config) error {
	return ow.dispatch(cfg, "Wrote history status",
		func(w io.Writer) error { return writeJSON(w, status) },
		func(w io.Writer) error { return writeHistoryStatusCSV(w, status) },
		func(w io.Writer) error { iocache.PrintHistoryStatus(w, status); return nil },
	)
}

// WriteWeights prints the active weights with the formula of each dimension.
func (ow *OutWriter) WriteWeights(weights map[schema.Dimension]float64, formulas map[schema.Dimension]string, cfg *contract.Config) error {
	rows := buildWeightRows(weights, formulas)
	return ow.dispatch(cfg, "Wrote weights",
		func(w io.Writer) error { return writeJSON(w, rows) },
		func(w io.Writer) error { return writeWeightsCSV(w, rows) },
		func(w io.Writer) error { return writeWeightsText(w, rows, cfg) },
	)
}

// dispatch selects the writer for the configured output mode.
func (ow *OutWriter) dispatch(cfg *contract.Config, successMsg string, jsonFn, csvFn, textFn func(io.Writer) error) error {
	var (
		fn   func(io.Writer) error
		kind string
	)
	switch cfg.Output {
	case schema.JSONOut:
		fn, kind = jsonFn, "JSON"
	case schema.CSVOut:
		fn, kind = csvFn, "CSV"
	default:
		fn, kind = textFn, "text"
	}
	if err := ow.writeWithFile(cfg.OutputFile, fn, successMsg); err != nil {
		return fmt.Errorf("error writing %s output: %w", kind, err)
	}
	return nil
}
