package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/zapponejosh/hijri-api/internal/database"
	"github.com/zapponejosh/hijri-api/internal/observance"
)

const sampleCatalog = `
source: test
observances:
  - id: ramadan_start
    name: Start of Ramadan
    month: 9
    day: 1
    category: obligatory
  - id: eid_al_fitr
    name: Eid al-Fitr
    month: 10
    day: 1
    category: obligatory
`

func testDB(t *testing.T) *database.DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := database.Open(database.Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func TestParseCatalog(t *testing.T) {
	catalog, err := parseCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("parseCatalog() error = %v", err)
	}
	if catalog.Source != "test" {
		t.Errorf("Source = %q, want test", catalog.Source)
	}
	if len(catalog.Observances) != 2 {
		t.Fatalf("len(Observances) = %d, want 2", len(catalog.Observances))
	}
	if got := catalog.Observances[1]; got.ID != "eid_al_fitr" || got.Month != 10 || got.Category != observance.CategoryObligatory {
		t.Errorf("second entry = %+v", got)
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "empty",
			input:   "source: nothing\n",
			wantErr: "no observances",
		},
		{
			name:    "unknown field",
			input:   "observances:\n  - id: a\n    colour: red\n",
			wantErr: "parse YAML",
		},
		{
			name: "duplicate date",
			input: `observances:
  - {id: a, name: A, month: 1, day: 1, category: historical}
  - {id: b, name: B, month: 1, day: 1, category: historical}
`,
			wantErr: "invalid observance catalog",
		},
		{
			name:    "bad category",
			input:   "observances:\n  - {id: a, name: A, month: 1, day: 1, category: festive}\n",
			wantErr: "invalid observance catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCatalog([]byte(tt.input))
			if err == nil {
				t.Fatal("parseCatalog() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseCatalog_BundledFile(t *testing.T) {
	data, err := os.ReadFile("../../data/observances.yaml")
	if err != nil {
		t.Fatalf("read bundled catalog: %v", err)
	}

	catalog, err := parseCatalog(data)
	if err != nil {
		t.Fatalf("parseCatalog() error = %v", err)
	}
	if len(catalog.Observances) <= len(observance.DefaultCatalog()) {
		t.Errorf("bundled catalog has %d entries, want more than the built-in %d",
			len(catalog.Observances), len(observance.DefaultCatalog()))
	}
}

func TestImportCatalog(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := db.SeedObservances(ctx, observance.DefaultCatalog()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	catalog, err := parseCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("parseCatalog() error = %v", err)
	}

	t.Run("upsert keeps other entries", func(t *testing.T) {
		stats, err := importCatalog(ctx, db, catalog.Observances, false, logger)
		if err != nil {
			t.Fatalf("importCatalog() error = %v", err)
		}
		if stats.Upserted != 2 || stats.Removed != 0 {
			t.Errorf("stats = %+v", stats)
		}

		count, _ := db.CountObservances(ctx)
		if count != len(observance.DefaultCatalog()) {
			t.Errorf("count = %d, want %d", count, len(observance.DefaultCatalog()))
		}
	})

	t.Run("replace drops missing entries", func(t *testing.T) {
		stats, err := importCatalog(ctx, db, catalog.Observances, true, logger)
		if err != nil {
			t.Fatalf("importCatalog() error = %v", err)
		}
		if stats.Removed != len(observance.DefaultCatalog()) {
			t.Errorf("Removed = %d, want %d", stats.Removed, len(observance.DefaultCatalog()))
		}

		count, _ := db.CountObservances(ctx)
		if count != 2 {
			t.Errorf("count = %d, want 2", count)
		}
	})

	t.Run("conflicting date rolls back", func(t *testing.T) {
		clash := []observance.Event{
			{ID: "new_entry", Name: "New", Month: 12, Day: 12, Category: observance.CategoryHistorical},
			{ID: "clash", Name: "Clash", Month: 9, Day: 1, Category: observance.CategoryHistorical},
		}
		_, err := importCatalog(ctx, db, clash, false, logger)
		if !errors.Is(err, database.ErrDuplicate) {
			t.Fatalf("importCatalog() error = %v, want ErrDuplicate", err)
		}

		if _, err := db.GetObservance(ctx, "new_entry"); !database.IsNotFound(err) {
			t.Errorf("new_entry survived rollback: %v", err)
		}
	})
}

func TestImportCatalog_DateSwap(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	initial := []observance.Event{
		{ID: "first", Name: "First", Month: 1, Day: 1, Category: observance.CategoryHistorical},
		{ID: "second", Name: "Second", Month: 2, Day: 2, Category: observance.CategoryHistorical},
		{ID: "third", Name: "Third", Month: 3, Day: 3, Category: observance.CategoryHistorical},
	}
	if _, err := importCatalog(ctx, db, initial, false, logger); err != nil {
		t.Fatalf("initial import error = %v", err)
	}

	t.Run("two entries trade dates", func(t *testing.T) {
		swapped := []observance.Event{
			{ID: "first", Name: "First", Month: 2, Day: 2, Category: observance.CategoryHistorical},
			{ID: "second", Name: "Second", Month: 1, Day: 1, Category: observance.CategoryHistorical},
		}
		stats, err := importCatalog(ctx, db, swapped, false, logger)
		if err != nil {
			t.Fatalf("importCatalog() error = %v", err)
		}
		if stats.Moved != 2 || stats.Upserted != 2 || stats.Removed != 0 {
			t.Errorf("stats = %+v, want 2 moved, 2 upserted", stats)
		}

		reg, err := db.LoadRegistry(ctx)
		if err != nil {
			t.Fatalf("LoadRegistry() error = %v", err)
		}
		if e, _ := reg.Lookup(1, 1); e.ID != "second" {
			t.Errorf("1/1 = %q, want second", e.ID)
		}
		if e, _ := reg.Lookup(2, 2); e.ID != "first" {
			t.Errorf("2/2 = %q, want first", e.ID)
		}
		if e, _ := reg.Lookup(3, 3); e.ID != "third" {
			t.Errorf("entry outside the file lost: 3/3 = %q", e.ID)
		}
	})

	t.Run("chain keeps unaffected entry in place", func(t *testing.T) {
		chain := []observance.Event{
			{ID: "second", Name: "Second", Month: 3, Day: 3, Category: observance.CategoryHistorical},
			{ID: "third", Name: "Third", Month: 4, Day: 4, Category: observance.CategoryHistorical},
		}
		stats, err := importCatalog(ctx, db, chain, false, logger)
		if err != nil {
			t.Fatalf("importCatalog() error = %v", err)
		}
		if stats.Moved != 1 {
			t.Errorf("Moved = %d, want 1", stats.Moved)
		}

		got, err := db.GetObservance(ctx, "second")
		if err != nil {
			t.Fatalf("GetObservance() error = %v", err)
		}
		if got.Month != 3 || got.Day != 3 {
			t.Errorf("second = %d/%d, want 3/3", got.Month, got.Day)
		}
	})

	t.Run("date held by entry outside the file", func(t *testing.T) {
		clash := []observance.Event{
			{ID: "second", Name: "Second", Month: 2, Day: 2, Category: observance.CategoryHistorical},
		}
		_, err := importCatalog(ctx, db, clash, false, logger)
		if !errors.Is(err, database.ErrDuplicate) {
			t.Fatalf("importCatalog() error = %v, want ErrDuplicate", err)
		}

		got, err := db.GetObservance(ctx, "second")
		if err != nil {
			t.Fatalf("GetObservance() error = %v", err)
		}
		if got.Month != 3 {
			t.Errorf("second moved despite rollback: %d/%d", got.Month, got.Day)
		}
	})
}

func TestDeleteEntry(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.SeedObservances(ctx, observance.DefaultCatalog()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	removed, err := deleteEntry(ctx, db, "eid_al_adha")
	if err != nil {
		t.Fatalf("deleteEntry() error = %v", err)
	}
	if removed.Name != "Eid al-Adha" {
		t.Errorf("removed = %+v", removed)
	}

	count, err := db.CountObservances(ctx)
	if err != nil {
		t.Fatalf("CountObservances() error = %v", err)
	}
	if count != len(observance.DefaultCatalog())-1 {
		t.Errorf("count = %d, want %d", count, len(observance.DefaultCatalog())-1)
	}

	if _, err := deleteEntry(ctx, db, "eid_al_adha"); !database.IsNotFound(err) {
		t.Errorf("deleteEntry(again) error = %v, want ErrNotFound", err)
	}
}
