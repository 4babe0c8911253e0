package sqlite

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/lernwerk/trainer/internal/storage/migrations"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the SQLite handle backing the local trainer installation. It is
// opened in WAL mode and restricted to one connection; SQLite allows a
// single writer and the trainer runs single-user anyway.
type DB struct {
	*sql.DB
}

// Open connects to the trainer database at path, creating the file on
// first use.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	return &DB{DB: db}, nil
}

// Migrate brings the schema up to date by applying every embedded
// migration newer than the recorded schema version. Each migration runs
// in its own transaction.
func (db *DB) Migrate() error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	current, err := db.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	pending, err := pendingMigrations(current)
	if err != nil {
		return err
	}

	for _, m := range pending {
		data, err := fs.ReadFile(migrations.FS, m.name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", m.name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for migration %s: %w", m.name, err)
		}

		if _, err := tx.Exec(string(data)); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		if _, err := tx.Exec("INSERT OR REPLACE INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.name, err)
		}

		slog.Info("schema migrated", "migration", m.name, "version", m.version)
	}

	return nil
}

// Version returns the highest applied schema version, 0 on a fresh file.
func (db *DB) Version() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}

type migration struct {
	name    string
	version int
}

// pendingMigrations lists embedded *.sql files newer than the current
// version, in ascending filename order.
func pendingMigrations(current int) ([]migration, error) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var pending []migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		version, err := parseVersion(e.Name())
		if err != nil {
			slog.Warn("ignoring file in migrations dir", "name", e.Name(), "error", err)
			continue
		}
		if version > current {
			pending = append(pending, migration{name: e.Name(), version: version})
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].name < pending[j].name })
	return pending, nil
}

// parseVersion extracts the numeric prefix of a migration filename, so
// "001_initial.sql" yields 1.
func parseVersion(name string) (int, error) {
	prefix, _, found := strings.Cut(name, "_")
	if !found {
		return 0, fmt.Errorf("migration filename %q has no version prefix", name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("migration filename %q: %w", name, err)
	}
	return version, nil
}
