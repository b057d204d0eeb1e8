package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HijriDate is a year/month/day triple in the tabular Hijri calendar.
type HijriDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Valid reports whether d satisfies year >= 1, 1 <= month <= 12 and
// 1 <= day <= MonthLength(year, month).
func (d HijriDate) Valid() bool {
	return d.Year >= 1 &&
		d.Month >= 1 && d.Month <= 12 &&
		d.Day >= 1 && d.Day <= MonthLength(d.Year, d.Month)
}

// Clamp returns d with each field forced into its valid range.
func (d HijriDate) Clamp() HijriDate {
	if d.Year < 1 {
		d.Year = 1
	}
	d.Month = clampInt(d.Month, 1, 12)
	d.Day = clampInt(d.Day, 1, MonthLength(d.Year, d.Month))
	return d
}

// Compare orders dates by (year, month, day). It returns -1, 0 or +1.
func (d HijriDate) Compare(other HijriDate) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(d.Month - other.Month)
	default:
		return sign(d.Day - other.Day)
	}
}

// Before reports whether d is earlier than other.
func (d HijriDate) Before(other HijriDate) bool {
	return d.Compare(other) < 0
}

// String formats d as YYYY-MM-DD.
func (d HijriDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ParseHijriDate parses a Hijri date in YYYY-MM-DD form. Unlike the
// arithmetic functions it rejects out-of-range fields rather than clamping
// them.
func ParseHijriDate(s string) (HijriDate, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return HijriDate{}, fmt.Errorf("invalid hijri date %q: want YYYY-MM-DD", s)
	}

	var fields [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return HijriDate{}, fmt.Errorf("invalid hijri date %q: %w", s, err)
		}
		fields[i] = v
	}

	d := HijriDate{Year: fields[0], Month: fields[1], Day: fields[2]}
	if !d.Valid() {
		return HijriDate{}, fmt.Errorf("hijri date %s out of range", d)
	}
	return d, nil
}

// ParseDateString parses a Gregorian date in YYYY-MM-DD format.
func ParseDateString(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format("2006-01-02")
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
