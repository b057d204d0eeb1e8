// Package export renders observances in external calendar formats.
package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	ics "github.com/emersion/go-ical"

	"github.com/zapponejosh/hijri-api/internal/calendar"
)

// ProductID identifies this service in generated iCalendar files.
const ProductID = "-//Hijri API//Observances//EN"

// WriteICS encodes the occurrences of one Hijri year as all-day iCalendar
// events. stamp is used for DTSTAMP so output is reproducible.
func WriteICS(w io.Writer, year int, occurrences []calendar.Occurrence, stamp time.Time) error {
	cal := ics.NewCalendar()
	cal.Props.SetText(ics.PropVersion, "2.0")
	cal.Props.SetText(ics.PropProductID, ProductID)
	cal.Props.SetText(ics.PropCalendarScale, "GREGORIAN")
	setExtension(cal.Props, "X-WR-CALNAME", fmt.Sprintf("Islamic observances %d AH", year))

	for _, occ := range occurrences {
		cal.Children = append(cal.Children, eventComponent(occ, stamp))
	}

	if err := ics.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode ICS: %w", err)
	}

	return nil
}

func eventComponent(occ calendar.Occurrence, stamp time.Time) *ics.Component {
	comp := ics.NewComponent(ics.CompEvent)

	comp.Props.SetText(ics.PropUID, fmt.Sprintf("%s-%d@hijri-api", occ.Event.ID, occ.Hijri.Year))
	comp.Props.SetDateTime(ics.PropDateTimeStamp, stamp.UTC())
	comp.Props.SetText(ics.PropSummary, occ.Event.Name)

	if occ.Event.Description != "" {
		comp.Props.SetText(ics.PropDescription, occ.Event.Description)
	}
	comp.Props.SetText(ics.PropCategories, string(occ.Event.Category))

	comp.Props.SetDate(ics.PropDateTimeStart, occ.Gregorian)
	comp.Props.SetDate(ics.PropDateTimeEnd, occ.Gregorian.AddDate(0, 0, 1))

	// Tabular date, kept so clients can show it next to the civil date
	setExtension(comp.Props, "X-HIJRI-DATE", occ.Hijri.String())
	setExtension(comp.Props, "X-HIJRI-YEAR", strconv.Itoa(occ.Hijri.Year))

	return comp
}

// setExtension sets an X- property without a VALUE parameter. SetText
// would tag it VALUE=TEXT since TEXT is not a registered default for
// unknown names.
func setExtension(props ics.Props, name, value string) {
	prop := ics.NewProp(name)
	prop.Value = value
	props.Set(prop)
}
