package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
)

// cacheTable is the name of the table for the persisted cache tier.
const cacheTable = "reposcore_cache"

// NewCacheStore returns the persisted cache tier for the backend.
// NoneBackend yields a nil store, which the Cache treats as memory only.
func NewCacheStore(backend schema.DatabaseBackend, connStr, dir string) (contract.CacheStore, error) {
	switch backend {
	case schema.NoneBackend:
		return nil, nil
	case schema.FileBackend:
		store, err := NewFileCacheStore(dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := NewSQLCacheStore(cacheTable, backend, connStr)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// SQLCacheStore keeps cache entries in a single SQL table.
type SQLCacheStore struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.CacheStore = &SQLCacheStore{} // Compile-time check

// NewSQLCacheStore opens the database and creates the cache table if needed.
func NewSQLCacheStore(tableName string, backend schema.DatabaseBackend, connStr string) (*SQLCacheStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	db, err := openDB(backend, connStr, contract.GetCacheDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("cache store: %w", err)
	}

	if _, err := db.Exec(getCreateCacheTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &SQLCacheStore{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// getCreateCacheTableQuery returns the CREATE TABLE query for the given backend.
func getCreateCacheTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key VARCHAR(255) PRIMARY KEY,
				cache_value LONGBLOB NOT NULL,
				cache_timestamp BIGINT NOT NULL,
				cache_ttl BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BYTEA NOT NULL,
				cache_timestamp BIGINT NOT NULL,
				cache_ttl BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BLOB NOT NULL,
				cache_timestamp INTEGER NOT NULL,
				cache_ttl INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// Get retrieves a value by key from the store.
func (ps *SQLCacheStore) Get(key string) ([]byte, int64, int64, error) {
	var (
		value []byte
		ts    int64
		ttl   int64
	)

	query := fmt.Sprintf(`SELECT cache_value, cache_timestamp, cache_ttl FROM %s WHERE cache_key = %s`,
		quoteTableName(ps.tableName, ps.backend), placeholder(ps.backend, 1))
	if err := ps.db.QueryRow(query, key).Scan(&value, &ts, &ttl); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, 0, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, 0, 0, err
	}
	return value, ts, ttl, nil
}

// Set inserts or replaces a key/value pair in the store.
func (ps *SQLCacheStore) Set(key string, value []byte, timestamp int64, ttl int64) error {
	_, err := ps.db.Exec(ps.getUpsertQuery(), key, value, timestamp, ttl)
	return err
}

// Delete removes a key from the store. Missing keys are not an error.
func (ps *SQLCacheStore) Delete(key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE cache_key = %s`,
		quoteTableName(ps.tableName, ps.backend), placeholder(ps.backend, 1))
	_, err := ps.db.Exec(query, key)
	return err
}

// Clear removes every entry while keeping the table in place.
func (ps *SQLCacheStore) Clear() error {
	_, err := ps.db.Exec(fmt.Sprintf("DELETE FROM %s", quoteTableName(ps.tableName, ps.backend)))
	return err
}

// getUpsertQuery returns the UPSERT query for the backend.
func (ps *SQLCacheStore) getUpsertQuery() string {
	quotedTableName := quoteTableName(ps.tableName, ps.backend)
	switch ps.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_timestamp, cache_ttl) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, cache_timestamp = new.cache_timestamp, cache_ttl = new.cache_ttl`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_timestamp, cache_ttl) VALUES ($1, $2, $3, $4)
			ON CONFLICT (cache_key) DO UPDATE SET cache_value = EXCLUDED.cache_value, cache_timestamp = EXCLUDED.cache_timestamp, cache_ttl = EXCLUDED.cache_ttl`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, cache_value, cache_timestamp, cache_ttl) VALUES (?, ?, ?, ?)`, quotedTableName)
	}
}

// Close closes the underlying DB connection.
func (ps *SQLCacheStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

// GetStatus returns status information about the cache store.
func (ps *SQLCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(ps.backend),
		Connected: ps.db != nil,
	}
	if ps.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(ps.tableName, ps.backend)

	row := ps.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}

	if status.TotalEntries > 0 {
		var lastTs, oldestTs int64
		row = ps.db.QueryRow(fmt.Sprintf("SELECT MAX(cache_timestamp), MIN(cache_timestamp) FROM %s", quotedTableName))
		if err := row.Scan(&lastTs, &oldestTs); err != nil {
			return status, fmt.Errorf("failed to get entry times: %w", err)
		}
		status.LastEntryTime = time.UnixMilli(lastTs)
		status.OldestEntryTime = time.UnixMilli(oldestTs)
	}

	status.PersistedBytes = tableSizeBytes(ps.db, ps.backend, ps.connStr, ps.tableName, status.TotalEntries)
	return status, nil
}
