package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zapponejosh/hijri-api/internal/observance"
)

// querier is satisfied by both *DB and *Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const observanceColumns = `id, name, description, month, day, category, display_icon, color_token`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanObservance(s scanner) (observance.Event, error) {
	var e observance.Event
	var category string
	err := s.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.Month,
		&e.Day,
		&category,
		&e.DisplayIcon,
		&e.ColorToken,
	)
	e.Category = observance.Category(category)
	return e, err
}

// =============================================================================
// Observance Queries
// =============================================================================

// ListObservances returns the whole catalog in insertion order.
func (db *DB) ListObservances(ctx context.Context) ([]observance.Event, error) {
	return listObservances(ctx, db)
}

// ListObservances is the transactional form of DB.ListObservances.
func (tx *Tx) ListObservances(ctx context.Context) ([]observance.Event, error) {
	return listObservances(ctx, tx)
}

func listObservances(ctx context.Context, q querier) ([]observance.Event, error) {
	query := `SELECT ` + observanceColumns + ` FROM observances ORDER BY position ASC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query observances: %w", err)
	}
	defer rows.Close()

	events := []observance.Event{}
	for rows.Next() {
		e, err := scanObservance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan observance row: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observance rows: %w", err)
	}

	return events, nil
}

// GetObservance retrieves a single observance by id.
// Returns ErrNotFound if the id doesn't exist.
func (db *DB) GetObservance(ctx context.Context, id string) (*observance.Event, error) {
	query := `SELECT ` + observanceColumns + ` FROM observances WHERE id = ?`

	e, err := scanObservance(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query observance: %w", err)
	}

	return &e, nil
}

// CountObservances returns the number of catalog entries.
func (db *DB) CountObservances(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM observances").Scan(&count); err != nil {
		return 0, fmt.Errorf("count observances: %w", err)
	}
	return count, nil
}

// UpsertObservance inserts or updates an observance by id.
//
// New entries are appended to the end of the catalog order; updates keep
// their position. Returns ErrDuplicate if another entry already uses the
// same (month, day). Catalog writes always go through a transaction so a
// failed import leaves nothing behind.
func (tx *Tx) UpsertObservance(ctx context.Context, e observance.Event) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validate observance: %w", err)
	}

	query := `
		INSERT INTO observances (
			id, name, description, month, day, category,
			display_icon, color_token, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM observances))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			month = excluded.month,
			day = excluded.day,
			category = excluded.category,
			display_icon = excluded.display_icon,
			color_token = excluded.color_token,
			updated_at = datetime('now')
	`

	_, err := tx.ExecContext(ctx, query,
		e.ID,
		e.Name,
		e.Description,
		e.Month,
		e.Day,
		string(e.Category),
		e.DisplayIcon,
		e.ColorToken,
	)
	if err != nil {
		if isConstraintConflict(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("upsert observance: %w", err)
	}

	return nil
}

// DeleteObservance removes an observance by id.
// Returns ErrNotFound if the id doesn't exist.
func (db *DB) DeleteObservance(ctx context.Context, id string) error {
	return deleteObservance(ctx, db, id)
}

// DeleteObservance is the transactional form of DB.DeleteObservance.
func (tx *Tx) DeleteObservance(ctx context.Context, id string) error {
	return deleteObservance(ctx, tx, id)
}

func deleteObservance(ctx context.Context, q querier, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM observances WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete observance: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ClearObservances removes every catalog entry and returns how many were
// deleted. Used by the importer when a file replaces the whole catalog.
func (tx *Tx) ClearObservances(ctx context.Context) (int, error) {
	result, err := tx.ExecContext(ctx, "DELETE FROM observances")
	if err != nil {
		return 0, fmt.Errorf("clear observances: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return int(rows), nil
}

// SeedObservances inserts the given catalog if the table is empty.
// Returns the number of entries inserted; zero when a catalog already
// exists.
func (db *DB) SeedObservances(ctx context.Context, events []observance.Event) (int, error) {
	inserted := 0

	err := db.WithTx(ctx, func(tx *Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM observances").Scan(&count); err != nil {
			return fmt.Errorf("count observances: %w", err)
		}
		if count > 0 {
			return nil
		}

		for _, e := range events {
			if err := tx.UpsertObservance(ctx, e); err != nil {
				return fmt.Errorf("seed %s: %w", e.ID, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if inserted > 0 {
		db.logger.Info("seeded observance catalog", slog.Int("count", inserted))
	}

	return inserted, nil
}
