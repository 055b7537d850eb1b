package export

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"eventcal/internal/model"
)

const (
	prodID    = "-//Tauwerk//Events//DE"
	uidDomain = "tauwerk.de"

	// defaultDuration is assumed for timed events, which carry no end time
	// of their own.
	defaultDuration = 2 * time.Hour

	icalDateLayout     = "20060102"
	icalDateTimeLayout = "20060102T150405"
)

// Exporter converts single events into portable calendar artifacts. All
// methods are pure; the only state is the timezone used when a wall-clock
// time has to become an instant (Google Calendar links).
type Exporter struct {
	loc *time.Location
}

// New creates an Exporter. A nil location falls back to time.Local.
func New(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{loc: loc}
}

// eventWindow derives the start/end block of an event:
//
//   - full date with time: start at that wall-clock time, end 2h later;
//   - full date without time: whole-day block (end = next day);
//   - month or year only: whole-day block anchored at the first day of the
//     known month, or January 1 for year-only dates.
//
// The returned times are wall-clock values; allDay tells the caller whether
// the time of day carries meaning.
func eventWindow(d model.PartialDate) (start, end time.Time, allDay bool) {
	if d.Month != 0 && d.Day != 0 {
		if d.Time != "" {
			hour, minute := parseClock(d.Time)
			start = time.Date(d.Year, time.Month(d.Month), d.Day, hour, minute, 0, 0, time.UTC)
			return start, start.Add(defaultDuration), false
		}
		start = time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 0, 1), true
	}

	month := d.Month
	if month == 0 {
		month = 1
	}
	start = time.Date(d.Year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1), true
}

// parseClock splits a "HH:MM" string; malformed parts read as zero, so a
// broken time degrades to midnight instead of failing the export.
func parseClock(s string) (hour, minute int) {
	parts := strings.SplitN(s, ":", 2)
	hour = atoiOrZero(parts[0])
	if len(parts) == 2 {
		minute = atoiOrZero(parts[1])
	}
	return hour, minute
}

func atoiOrZero(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// ICSDocument renders ev as a single-event iCalendar document. The output
// is CRLF-delimited and never fails: incomplete dates degrade to a
// whole-day block anchored at the earliest known date unit.
func (x *Exporter) ICSDocument(ev model.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)
	cal.SetCalscale("GREGORIAN")

	ve := cal.AddEvent(ev.ID + "@" + uidDomain)
	ve.SetDtStampTime(now.UTC())

	start, end, allDay := eventWindow(ev.Date)
	if allDay {
		ve.SetProperty(ical.ComponentPropertyDtStart, start.Format(icalDateLayout))
		ve.SetProperty(ical.ComponentPropertyDtEnd, end.Format(icalDateLayout))
	} else {
		// Floating local time: the event happens at this wall-clock time
		// wherever the venue is.
		ve.SetProperty(ical.ComponentPropertyDtStart, start.Format(icalDateTimeLayout))
		ve.SetProperty(ical.ComponentPropertyDtEnd, end.Format(icalDateTimeLayout))
	}

	// Raw values; Serialize escapes the RFC 5545 TEXT specials exactly once.
	ve.SetProperty(ical.ComponentPropertySummary, ev.Title)
	ve.SetProperty(ical.ComponentPropertyDescription, ev.Description)
	ve.SetProperty(ical.ComponentPropertyLocation, ev.Location)

	if ev.Registration.Link != "" {
		ve.SetProperty(ical.ComponentProperty("URL"), ev.Registration.Link)
	}
	ve.SetProperty(ical.ComponentProperty("STATUS"), "CONFIRMED")
	ve.SetProperty(ical.ComponentProperty("CATEGORIES"), strings.ToUpper(string(ev.Category)))

	return cal.Serialize()
}

// ICSFilename is the download name for the exported document.
func ICSFilename(ev model.Event) string {
	return ev.ID + ".ics"
}
