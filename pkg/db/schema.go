package db

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version    int
	statements string
}

// migrations are applied in order; each runs in its own transaction.
var migrations = []migration{
	{
		version: 1,
		statements: `
CREATE TABLE IF NOT EXISTS schema_version (
    version     INTEGER PRIMARY KEY,
    applied_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

-- One row per executed instruction
CREATE TABLE IF NOT EXISTS instructions (
    id           TEXT PRIMARY KEY,
    code         TEXT NOT NULL,
    source       TEXT NOT NULL,
    commands     TEXT NOT NULL DEFAULT '[]',
    acknowledged INTEGER NOT NULL DEFAULT 0,
    error        TEXT NOT NULL DEFAULT '',
    started_at   TEXT NOT NULL,
    duration_ms  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_instructions_started ON instructions(started_at);
CREATE INDEX IF NOT EXISTS idx_instructions_code ON instructions(code);
`,
	},
}

var currentSchemaVersion = migrations[len(migrations)-1].version

// Migrate applies every migration newer than the recorded schema version.
func (db *DB) Migrate(ctx context.Context) error {
	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := db.apply(ctx, m); err != nil {
			return fmt.Errorf("failed to apply schema v%d: %w", m.version, err)
		}
	}
	return nil
}

// SchemaVersion returns the recorded schema version, or 0 on a fresh database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var tables int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`,
	).Scan(&tables); err != nil {
		return 0, err
	}
	if tables == 0 {
		return 0, nil
	}

	var version int
	if err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_version`,
	).Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func (db *DB) apply(ctx context.Context, m migration) error {
	return db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, m.statements); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, m.version)
		return err
	})
}
