// Package calendar implements a tabular Hijri calendar.
//
// The calendar is an arithmetic approximation anchored to a single epoch:
// the proleptic Gregorian date 622-07-16 is Hijri 1/1/1, and that day is
// counted as a Thursday. Years follow a fixed 30-year cycle in which 11
// years have 355 days and the rest have 354. Results are internally
// consistent but are not astronomically authoritative and will not match
// sighting-based or officially announced dates.
//
// Every function in this package is pure. "Today" is always supplied by
// the caller.
package calendar

import "time"

const (
	// CycleYears is the length of the leap-year cycle.
	CycleYears = 30

	// CycleDays is the number of days in one full 30-year cycle
	// (19 common years of 354 days plus 11 leap years of 355 days).
	CycleDays = 19*354 + 11*355

	// EpochWeekday is the weekday assigned to Hijri 1/1/1.
	EpochWeekday = time.Thursday
)

// EpochGregorian is the Gregorian date of Hijri 1/1/1.
var EpochGregorian = time.Date(622, time.July, 16, 0, 0, 0, 0, time.UTC)

// leapPositions marks the leap years by their 1-indexed cycle position.
var leapPositions = [CycleYears + 1]bool{
	2: true, 5: true, 7: true, 10: true, 13: true, 16: true,
	18: true, 21: true, 24: true, 26: true, 29: true,
}

// baseMonthLengths is the alternating 30/29 pattern. Month 12 is adjusted
// for leap years by MonthLength.
var baseMonthLengths = [12]int{30, 29, 30, 29, 30, 29, 30, 29, 30, 29, 30, 29}

// CyclePosition returns the 1-indexed position of year within its
// 30-year cycle.
func CyclePosition(year int) int {
	pos := year % CycleYears
	if pos == 0 {
		pos = CycleYears
	}
	return pos
}

// IsLeapYear reports whether year has 355 days. Years before 1 are
// treated as common years.
func IsLeapYear(year int) bool {
	if year < 1 {
		return false
	}
	return leapPositions[CyclePosition(year)]
}

// YearLength returns 355 for leap years and 354 otherwise.
func YearLength(year int) int {
	if IsLeapYear(year) {
		return 355
	}
	return 354
}

// MonthLength returns the number of days in month of year. Month is
// clamped to 1..12.
func MonthLength(year, month int) int {
	month = clampInt(month, 1, 12)
	if month == 12 {
		if IsLeapYear(year) {
			return 30
		}
		return 29
	}
	return baseMonthLengths[month-1]
}

// DayOfWeek returns the weekday of the given Hijri date, counted from the
// epoch weekday. Out-of-range input is clamped first.
func DayOfWeek(year, month, day int) time.Weekday {
	d := HijriDate{Year: year, Month: month, Day: day}.Clamp()
	return time.Weekday((int(EpochWeekday) + DaysSinceEpoch(d)) % 7)
}

// DaysSinceEpoch returns the number of days between Hijri 1/1/1 and d.
// Out-of-range input is clamped first.
func DaysSinceEpoch(d HijriDate) int {
	d = d.Clamp()

	days := daysBeforeYear(d.Year)
	for m := 1; m < d.Month; m++ {
		days += MonthLength(d.Year, m)
	}
	return days + d.Day - 1
}

// daysBeforeYear sums the lengths of years 1 through year-1. Whole cycles
// are counted in one step; only the partial cycle is walked.
func daysBeforeYear(year int) int {
	if year <= 1 {
		return 0
	}
	cycles := (year - 1) / CycleYears
	days := cycles * CycleDays
	for y := cycles*CycleYears + 1; y < year; y++ {
		days += YearLength(y)
	}
	return days
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
