package database

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// migrationsSQL maps schema versions to the SQL that creates them.
// Versions are applied in ascending order and never edited once shipped.
var migrationsSQL = map[int]string{
	1: migrationV1Observances,
}

const createSchemaMigrations = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

// Migrate brings the schema up to the latest version in one transaction and
// returns how many versions it applied. A store that is already current
// returns zero.
func (db *DB) Migrate(ctx context.Context) (int, error) {
	applied := 0

	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, createSchemaMigrations); err != nil {
			return fmt.Errorf("create schema_migrations: %w", err)
		}

		done, err := tx.appliedVersions(ctx)
		if err != nil {
			return err
		}

		for _, version := range slices.Sorted(maps.Keys(migrationsSQL)) {
			if done[version] {
				continue
			}
			if err := tx.applyMigration(ctx, version); err != nil {
				return err
			}
			db.logger.Info("schema migration applied", slog.Int("version", version))
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.logger.Debug("catalog schema current",
		slog.Int("applied", applied),
		slog.Int("latest", len(migrationsSQL)),
	)
	return applied, nil
}

func (tx *Tx) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := tx.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema versions: %w", err)
	}
	defer rows.Close()

	done := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan schema version: %w", err)
		}
		done[version] = true
	}
	return done, rows.Err()
}

func (tx *Tx) applyMigration(ctx context.Context, version int) error {
	if _, err := tx.ExecContext(ctx, migrationsSQL[version]); err != nil {
		return fmt.Errorf("schema version %d: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("record schema version %d: %w", version, err)
	}
	return nil
}

// migrationV1Observances creates the observance catalog.
//
// The catalog is read once at server start and held in memory, so the
// table is tuned for integrity rather than lookup speed:
//
//   - id is the stable catalog key used by imports and upserts
//   - (month, day) is unique; the registry rejects duplicates anyway
//   - position keeps catalog insertion order across upserts
const migrationV1Observances = `
-- Migration 001: observance catalog

CREATE TABLE IF NOT EXISTS observances (
    id TEXT PRIMARY KEY,

    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',

    -- Hijri month and day the observance recurs on
    month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
    day INTEGER NOT NULL CHECK (day BETWEEN 1 AND 30),

    category TEXT NOT NULL CHECK (category IN (
        'obligatory',
        'recommended',
        'historical',
        'commemorative'
    )),

    -- Presentation hints, passed through untouched
    display_icon TEXT NOT NULL DEFAULT '',
    color_token TEXT NOT NULL DEFAULT '',

    position INTEGER NOT NULL,

    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE (month, day)
);

CREATE INDEX IF NOT EXISTS idx_observances_position
    ON observances(position);

CREATE INDEX IF NOT EXISTS idx_observances_month
    ON observances(month);
`
