package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
)

// historyTable is the table created by the history migrations.
const historyTable = "reposcore_history_snapshots"

// snapshotColumns lists the snapshot columns in insert and scan order.
const snapshotColumns = `repository_id, seq, snapshot_time, overall_score,
	code_quality, documentation, testing, community, security, dependencies,
	stars, forks, open_issues, contributors, vulnerabilities, coverage_percent`

// snapshotColumnCount is the number of entries in snapshotColumns.
const snapshotColumnCount = 16

// NewHistoryStore returns the history store for the backend.
// NoneBackend yields a nil store, which keeps history in memory only.
func NewHistoryStore(backend schema.DatabaseBackend, connStr, dir string) (contract.HistoryStore, error) {
	switch backend {
	case schema.NoneBackend:
		return nil, nil
	case schema.FileBackend:
		store, err := NewFileHistoryStore(dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := NewSQLHistoryStore(backend, connStr)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// SQLHistoryStore keeps one row per snapshot in a SQL table.
type SQLHistoryStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.HistoryStore = &SQLHistoryStore{} // Compile-time check

// NewSQLHistoryStore opens the database and ensures the snapshot table exists.
// Later schema versions are applied with MigrateHistory.
func NewSQLHistoryStore(backend schema.DatabaseBackend, connStr string) (*SQLHistoryStore, error) {
	query, err := historySchema(backend)
	if err != nil {
		return nil, err
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	if _, err := db.Exec(query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", historyTable, err)
	}

	return &SQLHistoryStore{db: db, backend: backend, connStr: connStr}, nil
}

// Load returns the snapshots of one repository in sequence order, or nil when none exist.
func (hs *SQLHistoryStore) Load(repositoryID string) (*schema.AnalysisHistory, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE repository_id = %s ORDER BY seq",
		snapshotColumns, quoteTableName(historyTable, hs.backend), placeholder(hs.backend, 1))
	rows, err := hs.db.Query(query, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", repositoryID, err)
	}
	defer func() { _ = rows.Close() }()

	histories, err := scanHistories(rows)
	if err != nil {
		return nil, err
	}
	if len(histories) == 0 {
		return nil, nil
	}
	return &histories[0], nil
}

// Save replaces the stored snapshots of one repository inside a transaction.
func (hs *SQLHistoryStore) Save(history *schema.AnalysisHistory) error {
	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	table := quoteTableName(historyTable, hs.backend)
	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE repository_id = %s", table, placeholder(hs.backend, 1))
	if _, err := tx.Exec(deleteQuery, history.RepositoryID); err != nil {
		return fmt.Errorf("failed to replace history for %s: %w", history.RepositoryID, err)
	}

	insertQuery := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, snapshotColumns, placeholders(hs.backend, snapshotColumnCount))
	stmt, err := tx.Prepare(insertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for seq, s := range history.Snapshots {
		_, err := stmt.Exec(
			history.RepositoryID, seq, s.Timestamp.UnixMilli(), s.OverallScore,
			s.Breakdown.CodeQuality, s.Breakdown.Documentation, s.Breakdown.Testing,
			s.Breakdown.Community, s.Breakdown.Security, s.Breakdown.Dependencies,
			s.Metrics.Stars, s.Metrics.Forks, s.Metrics.OpenIssues,
			s.Metrics.Contributors, s.Metrics.Vulnerabilities, s.Metrics.CoveragePercent,
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot %d for %s: %w", seq, history.RepositoryID, err)
		}
	}

	return tx.Commit()
}

// LoadAll returns every stored history ordered by repository.
func (hs *SQLHistoryStore) LoadAll() ([]schema.AnalysisHistory, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY repository_id, seq",
		snapshotColumns, quoteTableName(historyTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load histories: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanHistories(rows)
}

// Clear removes every snapshot while keeping the table in place.
func (hs *SQLHistoryStore) Clear() error {
	_, err := hs.db.Exec(fmt.Sprintf("DELETE FROM %s", quoteTableName(historyTable, hs.backend)))
	return err
}

// GetStatus returns status information about the history store.
func (hs *SQLHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:   string(hs.backend),
		Connected: hs.db != nil,
	}
	if hs.db == nil {
		return status, nil
	}

	table := quoteTableName(historyTable, hs.backend)
	row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(DISTINCT repository_id), COUNT(*) FROM %s", table))
	if err := row.Scan(&status.Repositories, &status.TotalSnapshots); err != nil {
		return status, fmt.Errorf("failed to count snapshots: %w", err)
	}

	if status.TotalSnapshots > 0 {
		var lastTs, oldestTs int64
		row = hs.db.QueryRow(fmt.Sprintf("SELECT MAX(snapshot_time), MIN(snapshot_time) FROM %s", table))
		if err := row.Scan(&lastTs, &oldestTs); err != nil {
			return status, fmt.Errorf("failed to get snapshot times: %w", err)
		}
		status.LastSnapshot = time.UnixMilli(lastTs).UTC()
		status.OldestSnapshot = time.UnixMilli(oldestTs).UTC()
	}

	status.PersistedBytes = tableSizeBytes(hs.db, hs.backend, hs.connStr, historyTable, status.TotalSnapshots)
	return status, nil
}

// Close closes the underlying DB connection.
func (hs *SQLHistoryStore) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// scanHistories groups rows ordered by repository and sequence into histories.
func scanHistories(rows *sql.Rows) ([]schema.AnalysisHistory, error) {
	var histories []schema.AnalysisHistory
	for rows.Next() {
		var (
			id       string
			seq      int
			snapTime int64
			s        schema.AnalysisSnapshot
		)
		err := rows.Scan(
			&id, &seq, &snapTime, &s.OverallScore,
			&s.Breakdown.CodeQuality, &s.Breakdown.Documentation, &s.Breakdown.Testing,
			&s.Breakdown.Community, &s.Breakdown.Security, &s.Breakdown.Dependencies,
			&s.Metrics.Stars, &s.Metrics.Forks, &s.Metrics.OpenIssues,
			&s.Metrics.Contributors, &s.Metrics.Vulnerabilities, &s.Metrics.CoveragePercent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.Timestamp = time.UnixMilli(snapTime).UTC()

		if n := len(histories); n == 0 || histories[n-1].RepositoryID != id {
			histories = append(histories, schema.AnalysisHistory{RepositoryID: id})
		}
		last := &histories[len(histories)-1]
		last.Snapshots = append(last.Snapshots, s)
	}
	return histories, rows.Err()
}
