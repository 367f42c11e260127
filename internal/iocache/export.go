package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/reposcore/internal/parquet"
	"github.com/huangsam/reposcore/schema"
)

// ExecuteHistoryExport writes every stored snapshot to a Parquet file, one row per snapshot.
func ExecuteHistoryExport(w io.Writer, store HistoryLister, outputFile string, grade func(int) schema.Grade) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return ErrHistoryStoreDisabled
	}

	histories, err := store.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to retrieve histories: %w", err)
	}
	if len(histories) == 0 {
		return errors.New("no history data found to export")
	}

	rows := parquet.ConvertHistories(histories, grade)
	if err := parquet.WriteSnapshotsParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write snapshots: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Exported %d snapshots across %d repositories to: %s\n", len(rows), len(histories), outputFile)
	return nil
}

// HistoryLister is the part of a history store needed for export.
type HistoryLister interface {
	LoadAll() ([]schema.AnalysisHistory, error)
}
