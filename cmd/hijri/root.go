package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/hijri-api/internal/calendar"
	"github.com/zapponejosh/hijri-api/internal/database"
	"github.com/zapponejosh/hijri-api/internal/observance"
)

// maxYear bounds every Hijri year the CLI accepts.
const maxYear = 9999

// app holds state shared by every subcommand.
type app struct {
	now    func() time.Time
	tz     string
	dbPath string
}

func newApp() *app {
	return &app{now: time.Now}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "hijri",
		Short:         "Tabular Hijri calendar tools",
		Long:          "Convert dates, print month grids and export observances using the 30-year tabular Hijri calendar.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.tz, "tz", envOr("TIMEZONE", "UTC"), "IANA timezone used to decide today's date")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "load the observance catalog from this SQLite database instead of the built-in one")

	root.AddCommand(
		newConvertCmd(a),
		newGridCmd(a),
		newYearCmd(a),
		newEventsCmd(a),
		newICSCmd(a),
	)

	return root
}

// today returns the current civil date in the --tz zone as a UTC midnight.
func (a *app) today() (time.Time, error) {
	loc, err := time.LoadLocation(a.tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", a.tz, err)
	}
	now := a.now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
}

// registry returns the observance catalog, from --db when given.
func (a *app) registry(ctx context.Context) (*observance.Registry, error) {
	if a.dbPath == "" {
		return observance.Default(), nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	db, err := database.Open(database.DefaultConfig(a.dbPath), logger)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return db.LoadRegistry(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseYear(raw string) (int, error) {
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", raw)
	}
	if err := checkYear(year); err != nil {
		return 0, err
	}
	return year, nil
}

func checkYear(year int) error {
	if year < 1 || year > maxYear {
		return fmt.Errorf("year must be between 1 and %d, got %d", maxYear, year)
	}
	return nil
}

func parseHijriArgs(args []string) (year, month int, err error) {
	if year, err = parseYear(args[0]); err != nil {
		return 0, 0, err
	}
	if month, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, fmt.Errorf("invalid month %q", args[1])
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	return year, month, nil
}

func describeDay(w io.Writer, greg time.Time, d calendar.HijriDate, reg *observance.Registry) {
	fmt.Fprintf(w, "%s  =  %s AH  (%s)\n",
		calendar.FormatDate(greg), d, calendar.DayOfWeek(d.Year, d.Month, d.Day))
	if ev, ok := reg.Lookup(d.Month, d.Day); ok {
		fmt.Fprintf(w, "  %s [%s]\n", ev.Name, ev.Category)
	}
}
