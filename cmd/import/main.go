// Command import loads an observance catalog from YAML into the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -file data/observances.yaml -db data/hijri.db
//
//	go run ./cmd/import -db data/hijri.db -delete day_of_tarwiyah
//
// This tool:
// 1. Parses and validates the YAML catalog
// 2. Creates/opens the SQLite database
// 3. Runs migrations to ensure schema is current
// 4. Upserts every entry in a single transaction
//
// Entries are matched by id, so running it twice is safe. Entries in the
// file may trade dates with each other. Pass -replace to drop entries that
// are not in the file, or -delete to remove one entry without a file.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/hijri-api/internal/database"
	"github.com/zapponejosh/hijri-api/internal/observance"
)

// catalogFile is the on-disk layout of an observance catalog.
type catalogFile struct {
	Source      string             `yaml:"source"`
	Observances []observance.Event `yaml:"observances"`
}

func main() {
	// Parse command line flags
	filePath := flag.String("file", "data/observances.yaml", "Path to YAML catalog")
	dbPath := flag.String("db", "data/hijri.db", "Path to SQLite database")
	replace := flag.Bool("replace", false, "Remove entries not present in the file")
	deleteID := flag.String("delete", "", "Remove the entry with this id instead of importing")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Setup logger
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if *deleteID != "" {
		if err := runDelete(*dbPath, *deleteID, logger); err != nil {
			logger.Error("delete failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	if err := run(*filePath, *dbPath, *replace, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

func run(filePath, dbPath string, replace bool, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and validate the catalog
	// =========================================================================
	logger.Info("reading catalog", slog.String("path", filePath))

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}

	catalog, err := parseCatalog(data)
	if err != nil {
		return err
	}

	logger.Info("parsed catalog",
		slog.Int("observances", len(catalog.Observances)),
		slog.String("source", catalog.Source),
	)

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	logger.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	existing, err := db.CountObservances(ctx)
	if err != nil {
		return err
	}
	logger.Info("database ready",
		slog.Int("migrations_applied", migrated),
		slog.Int("existing_observances", existing),
	)

	// =========================================================================
	// Step 3: Import in a transaction
	// =========================================================================
	stats, err := importCatalog(ctx, db, catalog.Observances, replace, logger)
	if err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}

	// =========================================================================
	// Step 4: Verify the stored catalog still forms a valid registry
	// =========================================================================
	stored, err := db.LoadRegistry(ctx)
	if err != nil {
		return fmt.Errorf("verify catalog: %w", err)
	}
	size := stored.Len()

	elapsed := time.Since(startTime)
	logger.Info("import verified",
		slog.Int("stored", size),
		slog.Duration("elapsed", elapsed),
	)

	// Print summary
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Entries upserted:    %d\n", stats.Upserted)
	fmt.Printf("Entries moved:       %d\n", stats.Moved)
	fmt.Printf("Entries removed:     %d\n", stats.Removed)
	fmt.Printf("Catalog size:        %d\n", size)
	fmt.Printf("Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}

func runDelete(dbPath, id string, logger *slog.Logger) error {
	ctx := context.Background()

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	removed, err := deleteEntry(ctx, db, id)
	if err != nil {
		return err
	}

	size, err := db.CountObservances(ctx)
	if err != nil {
		return err
	}

	logger.Info("observance removed",
		slog.String("id", removed.ID),
		slog.String("name", removed.Name),
		slog.Int("remaining", size),
	)
	return nil
}

// ImportStats tracks import statistics.
type ImportStats struct {
	Upserted int
	Moved    int // deleted and re-added because another entry took their date
	Removed  int
}

// parseCatalog decodes a YAML catalog and checks it the same way the
// server will when it loads the table.
func parseCatalog(data []byte) (*catalogFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var catalog catalogFile
	if err := dec.Decode(&catalog); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if len(catalog.Observances) == 0 {
		return nil, errors.New("catalog contains no observances")
	}

	if _, err := observance.NewRegistry(catalog.Observances); err != nil {
		return nil, err
	}

	return &catalog, nil
}

// importCatalog upserts events inside one transaction. With replace set the
// table is emptied first, so dates freed by removed entries can be reused.
// Without it, stored entries that the file moves onto each other's dates are
// staged out first; a date held by an entry missing from the file is still
// ErrDuplicate.
func importCatalog(ctx context.Context, db *database.DB, events []observance.Event, replace bool, logger *slog.Logger) (ImportStats, error) {
	var stats ImportStats

	err := db.WithTx(ctx, func(tx *database.Tx) error {
		if replace {
			removed, err := tx.ClearObservances(ctx)
			if err != nil {
				return err
			}
			stats.Removed = removed
		} else {
			moved, err := stageMoves(ctx, tx, events, logger)
			if err != nil {
				return err
			}
			stats.Moved = moved
		}

		for _, e := range events {
			if err := tx.UpsertObservance(ctx, e); err != nil {
				return fmt.Errorf("upsert %s: %w", e.ID, err)
			}
			logger.Debug("upserted observance",
				slog.String("id", e.ID),
				slog.Int("month", e.Month),
				slog.Int("day", e.Day),
			)
			stats.Upserted++
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}

	return stats, nil
}

// stageMoves deletes stored entries whose current date the file gives to a
// different id, when the file also lists them. The file is a valid registry,
// so each of them is moving elsewhere and the upsert pass re-adds it at the
// end of the catalog order.
func stageMoves(ctx context.Context, tx *database.Tx, events []observance.Event, logger *slog.Logger) (int, error) {
	stored, err := tx.ListObservances(ctx)
	if err != nil {
		return 0, err
	}

	type monthDay struct{ month, day int }
	claimedBy := make(map[monthDay]string, len(events))
	inFile := make(map[string]bool, len(events))
	for _, e := range events {
		claimedBy[monthDay{e.Month, e.Day}] = e.ID
		inFile[e.ID] = true
	}

	moved := 0
	for _, s := range stored {
		claimant, ok := claimedBy[monthDay{s.Month, s.Day}]
		if !ok || claimant == s.ID || !inFile[s.ID] {
			continue
		}
		if err := tx.DeleteObservance(ctx, s.ID); err != nil {
			return moved, fmt.Errorf("stage %s: %w", s.ID, err)
		}
		logger.Debug("staged date change",
			slog.String("id", s.ID),
			slog.String("date_taken_by", claimant),
		)
		moved++
	}

	return moved, nil
}

// deleteEntry removes one catalog entry and returns what was removed.
func deleteEntry(ctx context.Context, db *database.DB, id string) (*observance.Event, error) {
	existing, err := db.GetObservance(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up %s: %w", id, err)
	}
	if err := db.DeleteObservance(ctx, id); err != nil {
		return nil, fmt.Errorf("delete %s: %w", id, err)
	}
	return existing, nil
}
