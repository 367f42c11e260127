package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// historySchemaFile is the migration that creates the snapshot table.
const historySchemaFile = "000001_create_history_snapshots.up.sql"

// migrationDir returns the embedded migration directory for the backend.
func migrationDir(backend schema.DatabaseBackend) (fs.FS, error) {
	switch backend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return fs.Sub(migrationsFS, "migrations/"+string(backend))
	default:
		return nil, fmt.Errorf("migrations are not supported for %s backend", backend)
	}
}

// historySchema returns the statement that creates the snapshot table.
func historySchema(backend schema.DatabaseBackend) (string, error) {
	dir, err := migrationDir(backend)
	if err != nil {
		return "", err
	}
	body, err := fs.ReadFile(dir, historySchemaFile)
	if err != nil {
		return "", fmt.Errorf("failed to read history schema: %w", err)
	}
	return string(body), nil
}

// MigrateHistory moves the history schema to targetVersion and prints what changed.
// A negative target means the newest migration; zero removes every migration.
func MigrateHistory(backend schema.DatabaseBackend, connStr string, targetVersion int) error {
	m, closeDB, err := newMigrator(backend, connStr)
	if err != nil {
		return err
	}
	defer closeDB()

	from, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("cannot read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty; repair it before migrating again", from)
	}

	label := fmt.Sprintf("version %d", targetVersion)
	step := func() error { return m.Migrate(uint(targetVersion)) }
	switch {
	case targetVersion < 0:
		label, step = "the latest version", m.Up
	case targetVersion == 0:
		step = m.Down
	}

	switch err := step(); {
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Printf("History schema already at %s\n", label)
	case err != nil:
		return fmt.Errorf("cannot migrate history schema to %s: %w", label, err)
	default:
		to, _, _ := m.Version()
		fmt.Printf("History schema migrated from version %d to version %d\n", from, to)
	}
	return nil
}

// newMigrator opens the history database and binds it to the embedded migrations.
func newMigrator(backend schema.DatabaseBackend, connStr string) (*migrate.Migrate, func(), error) {
	source, err := migrationDir(backend)
	if err != nil {
		return nil, nil, err
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }

	driver, err := migrationDriver(backend, db)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	sourceDriver, err := iofs.New(source, ".")
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("cannot load embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "reposcore", driver)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("cannot prepare migrations: %w", err)
	}
	return m, closeDB, nil
}

// migrationDriver wraps an open connection in the matching migrate driver.
func migrationDriver(backend schema.DatabaseBackend, db *sql.DB) (database.Driver, error) {
	var (
		driver database.Driver
		err    error
	)
	switch backend {
	case schema.SQLiteBackend:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case schema.MySQLBackend:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case schema.PostgreSQLBackend:
		driver, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	default:
		return nil, fmt.Errorf("no migrate driver for %s backend", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}
	return driver, nil
}
