package postgres

import (
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"sort"
	"time"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies embedded migrations in order, recording each one in a
// schema_migrations table. Intentionally small and boring: sequential SQL
// files plus a single bookkeeping table.
func Migrate(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("missing db")
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	now := time.Now().UTC()
	for _, file := range files {
		version := file[:len(file)-len(".sql")]
		contents, err := migrationsFS.ReadFile("migrations/" + file)
		if err != nil {
			return err
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}

		// The insert doubles as the lock: a version already recorded by a
		// concurrent instance conflicts and the migration is skipped.
		res, err := tx.Exec(
			`INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2) ON CONFLICT (version) DO NOTHING`,
			version, now,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", version, err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			_ = tx.Rollback()
			continue
		}

		if _, err := tx.Exec(string(contents)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
