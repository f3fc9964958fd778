package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Storage owns the durable local database. It is constructed explicitly with
// Open and passed by reference to everything that needs it; there is no
// package-level handle.
type Storage struct {
	DB      *sql.DB
	Records *RecordsTable
}

// Open opens (creating if absent) the SQLite database at path and brings the
// schema up to the current version before returning. The upgrade is run by
// golang-migrate and is idempotent; existing rows survive it.
//
// Any failure here means the durable store is unusable and the caller must
// treat it as fatal; there is no in-memory fallback.
func Open(path string) (*Storage, error) {
	return open(path, 0)
}

// open migrates to targetVersion, or to the latest version when 0.
func open(path string, targetVersion uint) (*Storage, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent callers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrateSchema(db, targetVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Storage{
		DB:      db,
		Records: NewRecordsTable(db),
	}, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func migrateSchema(db *sql.DB, targetVersion uint) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("iofs.New: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite3.WithInstance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migrate.NewWithInstance: %w", err)
	}

	if targetVersion == 0 {
		err = m.Up()
	} else {
		err = m.Migrate(targetVersion)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
