package database

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/zapponejosh/hijri-api/internal/observance"
)

// testDB creates a temporary in-memory database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()

	cfg := Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	// Quiet logger for tests
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	db, err := Open(cfg, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	ctx := context.Background()
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func testEvent(id string, month, day int) observance.Event {
	return observance.Event{
		ID:          id,
		Name:        "Event " + id,
		Description: "Description of " + id,
		Month:       month,
		Day:         day,
		Category:    observance.CategoryHistorical,
		DisplayIcon: "star",
		ColorToken:  "blue",
	}
}

// upsert writes events in one transaction.
func upsert(ctx context.Context, db *DB, events ...observance.Event) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		for _, e := range events {
			if err := tx.UpsertObservance(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// -----------------------------------------------------------------
// DB tests
// -----------------------------------------------------------------

func TestOpen(t *testing.T) {
	db := testDB(t)

	if err := db.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db := testDB(t)

	// Migrations already ran in testDB; running again should be a no-op
	count, err := db.Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Migrate() count = %d, want 0 (already applied)", count)
	}
}

// -----------------------------------------------------------------
// Observance tests
// -----------------------------------------------------------------

func TestSeedObservances(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	catalog := observance.DefaultCatalog()

	n, err := db.SeedObservances(ctx, catalog)
	if err != nil {
		t.Fatalf("SeedObservances() error = %v", err)
	}
	if n != len(catalog) {
		t.Errorf("SeedObservances() = %d, want %d", n, len(catalog))
	}

	// Second seed is a no-op
	n, err = db.SeedObservances(ctx, catalog)
	if err != nil {
		t.Fatalf("second SeedObservances() error = %v", err)
	}
	if n != 0 {
		t.Errorf("second SeedObservances() = %d, want 0", n)
	}

	got, err := db.ListObservances(ctx)
	if err != nil {
		t.Fatalf("ListObservances() error = %v", err)
	}
	if diff := cmp.Diff(catalog, got); diff != "" {
		t.Errorf("ListObservances() mismatch (-want +got):\n%s", diff)
	}
}

func TestListObservances_Empty(t *testing.T) {
	db := testDB(t)

	got, err := db.ListObservances(context.Background())
	if err != nil {
		t.Fatalf("ListObservances() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListObservances() = %v, want empty slice", got)
	}
}

func TestUpsertObservance_KeepsPosition(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := upsert(ctx, db, testEvent("a", 1, 1), testEvent("b", 2, 1), testEvent("c", 3, 1)); err != nil {
		t.Fatalf("UpsertObservance() error = %v", err)
	}

	updated := testEvent("a", 4, 5)
	updated.Name = "Renamed"
	if err := upsert(ctx, db, updated); err != nil {
		t.Fatalf("UpsertObservance(update) error = %v", err)
	}

	got, err := db.ListObservances(ctx)
	if err != nil {
		t.Fatalf("ListObservances() error = %v", err)
	}

	var ids []string
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if got[0].Name != "Renamed" || got[0].Month != 4 || got[0].Day != 5 {
		t.Errorf("updated entry = %+v", got[0])
	}
}

func TestUpsertObservance_DuplicateDate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := upsert(ctx, db, testEvent("a", 9, 1)); err != nil {
		t.Fatalf("first UpsertObservance() error = %v", err)
	}

	err := upsert(ctx, db, testEvent("b", 9, 1))
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("UpsertObservance() duplicate error = %v, want ErrDuplicate", err)
	}
}

func TestUpsertObservance_Invalid(t *testing.T) {
	db := testDB(t)

	err := upsert(context.Background(), db, testEvent("bad", 13, 1))
	if err == nil {
		t.Fatal("UpsertObservance() error = nil for month 13")
	}
}

func TestGetObservance(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	want := testEvent("a", 7, 27)
	if err := upsert(ctx, db, want); err != nil {
		t.Fatalf("UpsertObservance() error = %v", err)
	}

	got, err := db.GetObservance(ctx, "a")
	if err != nil {
		t.Fatalf("GetObservance() error = %v", err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("GetObservance() mismatch (-want +got):\n%s", diff)
	}

	_, err = db.GetObservance(ctx, "missing")
	if !IsNotFound(err) {
		t.Errorf("GetObservance(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteObservance(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := upsert(ctx, db, testEvent("a", 1, 1)); err != nil {
		t.Fatalf("UpsertObservance() error = %v", err)
	}

	if err := db.DeleteObservance(ctx, "a"); err != nil {
		t.Fatalf("DeleteObservance() error = %v", err)
	}

	count, err := db.CountObservances(ctx)
	if err != nil {
		t.Fatalf("CountObservances() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountObservances() = %d, want 0", count)
	}

	if err := db.DeleteObservance(ctx, "a"); !IsNotFound(err) {
		t.Errorf("DeleteObservance(again) error = %v, want ErrNotFound", err)
	}
}

func TestWithTx_Rollback(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	wantErr := errors.New("abort")
	err := db.WithTx(ctx, func(tx *Tx) error {
		if err := tx.UpsertObservance(ctx, testEvent("a", 1, 1)); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("WithTx() error = %v, want %v", err, wantErr)
	}

	count, err := db.CountObservances(ctx)
	if err != nil {
		t.Fatalf("CountObservances() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountObservances() = %d after rollback, want 0", count)
	}
}

func TestLoadRegistry(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.SeedObservances(ctx, observance.DefaultCatalog()); err != nil {
		t.Fatalf("SeedObservances() error = %v", err)
	}

	reg, err := db.LoadRegistry(ctx)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if e, ok := reg.Lookup(9, 1); !ok || e.ID != "ramadan_start" {
		t.Errorf("Lookup(9, 1) = %v, %v", e, ok)
	}
}

func TestBootstrap(t *testing.T) {
	cfg := Config{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetime: time.Hour}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := Open(cfg, logger)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	catalog := observance.DefaultCatalog()

	reg, err := db.Bootstrap(ctx, catalog)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if reg.Len() != len(catalog) {
		t.Errorf("Bootstrap() registry has %d entries, want %d", reg.Len(), len(catalog))
	}
	if err := db.Health(ctx); err != nil {
		t.Errorf("Health() after Bootstrap error = %v", err)
	}

	// An imported change survives a restart: the seed only fills an empty table.
	if err := upsert(ctx, db, testEvent("extra", 12, 8)); err != nil {
		t.Fatalf("upsert() error = %v", err)
	}

	reg, err = db.Bootstrap(ctx, catalog)
	if err != nil {
		t.Fatalf("second Bootstrap() error = %v", err)
	}
	if reg.Len() != len(catalog)+1 {
		t.Errorf("second Bootstrap() registry has %d entries, want %d", reg.Len(), len(catalog)+1)
	}
	if e, ok := reg.Lookup(12, 8); !ok || e.ID != "extra" {
		t.Errorf("Lookup(12, 8) = %v, %v", e, ok)
	}
}

func TestBootstrap_NoSeed(t *testing.T) {
	db := testDB(t)

	reg, err := db.Bootstrap(context.Background(), nil)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Bootstrap(nil) registry has %d entries, want 0", reg.Len())
	}
}

func TestHealth_Unmigrated(t *testing.T) {
	cfg := Config{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetime: time.Hour}
	db, err := Open(cfg, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Health(context.Background()); err == nil {
		t.Error("Health() error = nil before the catalog table exists")
	}
}

func TestClearObservances(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.SeedObservances(ctx, observance.DefaultCatalog()); err != nil {
		t.Fatalf("SeedObservances() error = %v", err)
	}

	var cleared int
	err := db.WithTx(ctx, func(tx *Tx) error {
		var err error
		cleared, err = tx.ClearObservances(ctx)
		if err != nil {
			return err
		}
		// A date freed by the clear can be reused in the same transaction.
		return tx.UpsertObservance(ctx, testEvent("replacement", 9, 1))
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}
	if cleared != len(observance.DefaultCatalog()) {
		t.Errorf("ClearObservances() = %d, want %d", cleared, len(observance.DefaultCatalog()))
	}

	count, err := db.CountObservances(ctx)
	if err != nil {
		t.Fatalf("CountObservances() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountObservances() = %d, want 1", count)
	}
}
