// Package database persists the observance catalog in SQLite and turns the
// stored rows into the read-only registry that the server and CLI query.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/zapponejosh/hijri-api/internal/observance"
)

// =============================================================================
// Catalog Store
// =============================================================================

// DB is the catalog store. It embeds *sql.DB so callers can still reach the
// pool for health checks and ad hoc queries.
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Config describes where the catalog lives and how the pool is sized.
type Config struct {
	Path            string // SQLite file, or ":memory:" in tests
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns the pool settings used by the server, importer and
// CLI. The catalog is written only at first boot and by the importer, so a
// single connection serves every reader.
func DefaultConfig(path string) Config {
	return Config{
		Path:            path,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}
}

// pragmas are applied to every connection through the DSN. WAL keeps the
// server readable while the importer writes; the busy timeout covers the
// overlap.
const pragmas = "_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"

const (
	openTimeout   = 5 * time.Second
	healthTimeout = 3 * time.Second
)

// Open connects to the catalog at cfg.Path, creating its directory when
// needed. The caller must Close the returned store.
func Open(cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(cfg.Path); err != nil {
		return nil, err
	}

	pool, err := sql.Open("sqlite3", cfg.Path+"?"+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", cfg.Path, err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("reach catalog %s: %w", cfg.Path, err)
	}

	logger.Info("catalog store opened", slog.String("path", cfg.Path))

	return &DB{DB: pool, logger: logger}, nil
}

func ensureDir(path string) error {
	if path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog directory %s: %w", dir, err)
	}
	return nil
}

// Close releases the pool.
func (db *DB) Close() error {
	db.logger.Debug("catalog store closed")
	return db.DB.Close()
}

// Health reports whether the observances table still answers queries.
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if _, err := db.CountObservances(ctx); err != nil {
		return fmt.Errorf("catalog unreachable: %w", err)
	}
	return nil
}

// Bootstrap readies the store for serving. It applies pending migrations,
// seeds an empty catalog from seed and returns the registry built from the
// stored rows. On a store that is already populated it only reloads, so it
// is safe to call on every start. A nil seed leaves an empty table empty.
func (db *DB) Bootstrap(ctx context.Context, seed []observance.Event) (*observance.Registry, error) {
	if _, err := db.Migrate(ctx); err != nil {
		return nil, err
	}

	if len(seed) > 0 {
		if _, err := db.SeedObservances(ctx, seed); err != nil {
			return nil, err
		}
	}

	return db.LoadRegistry(ctx)
}

// LoadRegistry reads the catalog and checks it the same way an import does.
// A table edited by hand into an inconsistent state fails here rather than
// at lookup time.
func (db *DB) LoadRegistry(ctx context.Context) (*observance.Registry, error) {
	events, err := db.ListObservances(ctx)
	if err != nil {
		return nil, err
	}

	registry, err := observance.NewRegistry(events)
	if err != nil {
		return nil, fmt.Errorf("stored catalog: %w", err)
	}

	db.logger.Info("observance catalog loaded", slog.Int("count", registry.Len()))
	return registry, nil
}

// =============================================================================
// Transactions
// =============================================================================

// Tx is a catalog transaction. Write helpers hang off it so the importer can
// stage several changes and commit them together.
type Tx struct {
	*sql.Tx
}

// BeginTx starts a catalog transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx}, nil
}

// WithTx runs fn in a transaction and commits when it returns nil. A failed
// rollback is joined to fn's error so both stay visible to errors.Is.
func (db *DB) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog transaction: %w", err)
	}
	return nil
}

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrNotFound means no observance has the requested id.
	ErrNotFound = errors.New("observance not found")

	// ErrDuplicate means a write would put two observances on the same
	// (month, day).
	ErrDuplicate = errors.New("observance date already taken")
)

// IsNotFound reports whether err means the observance does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// isConstraintConflict reports whether err is SQLite rejecting a row for
// its primary key or the (month, day) unique index.
func isConstraintConflict(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return true
	}
	return false
}
