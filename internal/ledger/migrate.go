package ledger

import (
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

type DBDriver string

const (
	DBSQLite   DBDriver = "sqlite"
	DBPostgres DBDriver = "postgres"
)

// Migrate applies embedded migrations in order, recording each one in a
// migrations table. Sequential SQL files and a single bookkeeping table;
// nothing cleverer is needed at this scale.
func Migrate(db *sql.DB, driver DBDriver) error {
	if db == nil {
		return fmt.Errorf("missing db")
	}

	dir, err := migrationDir(driver)
	if err != nil {
		return err
	}

	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	files, err := listMigrationFiles(dir)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, file := range files {
		version := strings.TrimSuffix(filepath.Base(file), ".sql")

		contents, err := migrationsFS.ReadFile(file)
		if err != nil {
			return err
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}

		applied, err := tryInsertMigration(tx, driver, version, now)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if !applied {
			_ = tx.Rollback()
			continue
		}

		if _, err := tx.Exec(string(contents)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

func migrationDir(driver DBDriver) (string, error) {
	switch driver {
	case DBSQLite:
		return "migrations/sqlite", nil
	case DBPostgres:
		return "migrations/postgres", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`)
	return err
}

func listMigrationFiles(dir string) ([]string, error) {
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, dir+"/"+entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

func tryInsertMigration(tx *sql.Tx, driver DBDriver, version string, now string) (bool, error) {
	var query string
	switch driver {
	case DBPostgres:
		query = `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2) ON CONFLICT (version) DO NOTHING`
	default:
		query = `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?) ON CONFLICT (version) DO NOTHING`
	}

	result, err := tx.Exec(query, version, now)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
