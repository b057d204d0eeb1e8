package calendar

import "time"

const secondsPerDay = 24 * 60 * 60

// epochDay is EpochGregorian expressed as days since the Unix epoch.
var epochDay = civilDay(EpochGregorian)

// civilDay returns the calendar date of t, read in t's own location, as a
// day count since 1970-01-01. Time of day is discarded.
//
// time.Duration cannot span the ~1400 years back to the epoch, so dates
// are compared through Unix seconds of their UTC midnight instead.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

// FromGregorian converts the calendar date of t to a Hijri date.
//
// Only the year, month and day of t in its own location are used, so
// callers should convert t to the user's timezone first. Dates before the
// epoch return HijriDate{1, 1, 1}.
func FromGregorian(t time.Time) HijriDate {
	diff := civilDay(t) - epochDay
	if diff < 0 {
		return HijriDate{Year: 1, Month: 1, Day: 1}
	}

	// Skip whole 30-year cycles, then walk the remaining years and months.
	year := int(diff/CycleDays)*CycleYears + 1
	remaining := int(diff % CycleDays)

	for remaining >= YearLength(year) {
		remaining -= YearLength(year)
		year++
	}

	month := 1
	for month < 12 && remaining >= MonthLength(year, month) {
		remaining -= MonthLength(year, month)
		month++
	}

	return HijriDate{Year: year, Month: month, Day: remaining + 1}.Clamp()
}

// ToGregorian returns the Gregorian date, at UTC midnight, of d.
// Out-of-range input is clamped first.
func ToGregorian(d HijriDate) time.Time {
	day := epochDay + int64(DaysSinceEpoch(d))
	return time.Unix(day*secondsPerDay, 0).UTC()
}
