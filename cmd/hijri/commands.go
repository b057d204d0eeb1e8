package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/hijri-api/internal/calendar"
	"github.com/zapponejosh/hijri-api/internal/export"
	"github.com/zapponejosh/hijri-api/internal/observance"
)

func newConvertCmd(a *app) *cobra.Command {
	var toGregorian bool

	cmd := &cobra.Command{
		Use:   "convert [date]",
		Short: "Convert a Gregorian date (default today) to Hijri",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if toGregorian {
				if len(args) == 0 {
					return fmt.Errorf("--to-gregorian needs a Hijri date")
				}
				d, err := calendar.ParseHijriDate(args[0])
				if err != nil {
					return err
				}
				if err := checkYear(d.Year); err != nil {
					return err
				}
				describeDay(out, calendar.ToGregorian(d), d, reg)
				return nil
			}

			greg, err := a.today()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if greg, err = calendar.ParseDateString(args[0]); err != nil {
					return fmt.Errorf("invalid date %q: use YYYY-MM-DD", args[0])
				}
			}
			if greg.Before(calendar.EpochGregorian) {
				return fmt.Errorf("%s is before the Hijri epoch", calendar.FormatDate(greg))
			}

			describeDay(out, greg, calendar.FromGregorian(greg), reg)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&toGregorian, "to-gregorian", "g", false, "treat the argument as a Hijri date and convert it to Gregorian")
	return cmd
}

func newGridCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "grid [year month]",
		Short: "Print a Hijri month as a calendar grid (default current month)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <year> <month>, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}

			greg, err := a.today()
			if err != nil {
				return err
			}
			today := calendar.FromGregorian(greg)

			year, month := today.Year, today.Month
			if len(args) == 2 {
				if year, month, err = parseHijriArgs(args); err != nil {
					return err
				}
			}

			grid := calendar.NewGridBuilder(reg).Month(year, month, &today)
			renderGrid(cmd.OutOrStdout(), grid)
			return nil
		},
	}
}

func newYearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "year <year>",
		Short: "Show leap status and month lengths of a Hijri year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			leap := "common"
			if calendar.IsLeapYear(year) {
				leap = "leap"
			}
			start := calendar.ToGregorian(calendar.HijriDate{Year: year, Month: 1, Day: 1})

			fmt.Fprintf(out, "Year %d AH: %s, %d days, cycle position %d, starts %s\n",
				year, leap, calendar.YearLength(year), calendar.CyclePosition(year), calendar.FormatDate(start))
			for m := 1; m <= 12; m++ {
				fmt.Fprintf(out, "  %2d  %d days\n", m, calendar.MonthLength(year, m))
			}
			return nil
		},
	}
}

func newEventsCmd(a *app) *cobra.Command {
	var month, year int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List catalog observances, optionally placed on a Hijri year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month < 0 || month > 12 {
				return fmt.Errorf("month must be between 1 and 12, got %d", month)
			}
			if cmd.Flags().Changed("year") {
				if err := checkYear(year); err != nil {
					return err
				}
			}

			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if year > 0 {
				for _, occ := range calendar.ObservancesInYear(reg, year) {
					if month != 0 && occ.Hijri.Month != month {
						continue
					}
					fmt.Fprintf(out, "%s  %s  %s\n", occ.Hijri, calendar.FormatDate(occ.Gregorian), occ.Event.Name)
				}
				return nil
			}

			events := reg.All()
			if month != 0 {
				events = reg.ListForMonth(month)
			}
			for _, ev := range events {
				fmt.Fprintf(out, "%02d-%02d  %-14s  %s\n", ev.Month, ev.Day, ev.Category, ev.Name)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&month, "month", 0, "only list this Hijri month")
	cmd.Flags().IntVar(&year, "year", 0, "place observances on this Hijri year with Gregorian dates")
	return cmd
}

func newICSCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ics <year>",
		Short: "Export a Hijri year's observances as an iCalendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}

			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			return export.WriteICS(w, year, calendar.ObservancesInYear(reg, year), a.now().UTC())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "file to write, - for stdout")
	return cmd
}

// renderGrid prints a Sunday-first grid. Today is marked with * and days
// with an observance with +, followed by a legend.
func renderGrid(w io.Writer, grid calendar.MonthGrid) {
	fmt.Fprintf(w, "%d-%02d AH (%d days)\n", grid.Year, grid.Month, grid.MonthLength)
	fmt.Fprintln(w, " Su  Mo  Tu  We  Th  Fr  Sa")

	var line strings.Builder
	var legend []observance.Event
	for i, cell := range grid.Cells {
		switch {
		case cell.IsPadding():
			line.WriteString("    ")
		default:
			mark := " "
			if cell.Event != nil {
				mark = "+"
				legend = append(legend, *cell.Event)
			}
			if cell.IsToday {
				mark = "*"
			}
			fmt.Fprintf(&line, " %2d%s", cell.Day, mark)
		}

		if i%7 == 6 || i == len(grid.Cells)-1 {
			fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
			line.Reset()
		}
	}

	for _, ev := range legend {
		fmt.Fprintf(w, "  %2d  %s\n", ev.Day, ev.Name)
	}
}
