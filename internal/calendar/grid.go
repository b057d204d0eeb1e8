package calendar

import (
	"sort"
	"time"

	"github.com/zapponejosh/hijri-api/internal/observance"
)

// EventLookup finds the observance on a Hijri month and day.
// *observance.Registry implements it.
type EventLookup interface {
	Lookup(month, day int) (observance.Event, bool)
}

// CalendarDay is one cell of a month grid. Padding cells have Day == 0
// and no date or event.
type CalendarDay struct {
	Day     int               `json:"day,omitempty"`
	Date    *HijriDate        `json:"date,omitempty"`
	Event   *observance.Event `json:"event,omitempty"`
	IsToday bool              `json:"is_today"`
}

// IsPadding reports whether the cell only aligns the first day.
func (c CalendarDay) IsPadding() bool {
	return c.Day == 0
}

// MonthGrid is a Hijri month laid out in Sunday-first week columns.
// Trailing padding after the last day is left to the renderer.
type MonthGrid struct {
	Year           int           `json:"year"`
	Month          int           `json:"month"`
	MonthLength    int           `json:"month_length"`
	LeadingPadding int           `json:"leading_padding"`
	Cells          []CalendarDay `json:"cells"`
}

// Prev returns the month before the grid's month. Year 1 month 1 has no
// predecessor and returns itself.
func (g MonthGrid) Prev() (year, month int) {
	if g.Month > 1 {
		return g.Year, g.Month - 1
	}
	if g.Year <= 1 {
		return 1, 1
	}
	return g.Year - 1, 12
}

// Next returns the month after the grid's month.
func (g MonthGrid) Next() (year, month int) {
	if g.Month < 12 {
		return g.Year, g.Month + 1
	}
	return g.Year + 1, 1
}

// GridBuilder lays out month grids decorated with observances.
type GridBuilder struct {
	events EventLookup
}

// NewGridBuilder creates a grid builder. events may be nil, in which case
// no cell carries an observance.
func NewGridBuilder(events EventLookup) *GridBuilder {
	return &GridBuilder{events: events}
}

// Build returns the cells of the given month: one padding cell per
// weekday before the 1st, then one cell per day. A cell is marked as
// today only when today is non-nil and equals that cell's date exactly.
func (b *GridBuilder) Build(year, month int, today *HijriDate) []CalendarDay {
	return b.Month(year, month, today).Cells
}

// Month is Build with the grid's metadata attached. Year and month are
// clamped to the valid range.
func (b *GridBuilder) Month(year, month int, today *HijriDate) MonthGrid {
	first := HijriDate{Year: year, Month: month, Day: 1}.Clamp()
	year, month = first.Year, first.Month

	length := MonthLength(year, month)
	padding := int(DayOfWeek(year, month, 1))

	cells := make([]CalendarDay, 0, padding+length)
	for i := 0; i < padding; i++ {
		cells = append(cells, CalendarDay{})
	}

	for day := 1; day <= length; day++ {
		date := HijriDate{Year: year, Month: month, Day: day}
		cell := CalendarDay{
			Day:     day,
			Date:    &date,
			IsToday: today != nil && *today == date,
		}
		if b.events != nil {
			if ev, ok := b.events.Lookup(month, day); ok {
				cell.Event = &ev
			}
		}
		cells = append(cells, cell)
	}

	return MonthGrid{
		Year:           year,
		Month:          month,
		MonthLength:    length,
		LeadingPadding: padding,
		Cells:          cells,
	}
}

// Occurrence places a catalog observance on a concrete Hijri year.
type Occurrence struct {
	Event     observance.Event `json:"event"`
	Hijri     HijriDate        `json:"hijri"`
	Gregorian time.Time        `json:"gregorian"`
}

// EventLister lists every observance in a catalog.
type EventLister interface {
	All() []observance.Event
}

// ObservancesInYear returns the observances falling in the given Hijri
// year, in date order. An observance on a day the month lacks that year
// (such as the 30th of a 29-day month) is skipped.
func ObservancesInYear(events EventLister, year int) []Occurrence {
	if year < 1 {
		year = 1
	}

	var out []Occurrence
	for _, ev := range events.All() {
		date := HijriDate{Year: year, Month: ev.Month, Day: ev.Day}
		if !date.Valid() {
			continue
		}
		out = append(out, Occurrence{
			Event:     ev,
			Hijri:     date,
			Gregorian: ToGregorian(date),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Hijri.Before(out[j].Hijri)
	})

	return out
}
