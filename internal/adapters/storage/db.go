package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// migrations are applied in order; index+1 is the schema version they produce.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS local_storage (
		namespace TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (namespace, key)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_local_storage_namespace ON local_storage(namespace);`,
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return len(migrations)
}

// InitDB applies connection pragmas. Tables are created by MigrateDB.
// PRE: db is a valid database connection
// POST: foreign keys enforced; WAL enabled for file databases
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return nil
}

// MigrateDB brings the schema up to LatestSchemaVersion.
// PRE: db is a valid database connection
// POST: schema_version holds LatestSchemaVersion; every pending migration applied once
func MigrateDB(ctx context.Context, db *sql.DB) error {
	if err := InitDB(db); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for v := current; v < len(migrations); v++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, v+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		slog.Info("schema_migrated", "version", v+1)
	}
	return nil
}
