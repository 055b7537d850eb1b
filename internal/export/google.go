package export

import (
	"net/url"
	"time"

	"eventcal/internal/model"
)

const googleRenderURL = "https://calendar.google.com/calendar/render"

const compactUTCLayout = "20060102T150405Z"

// GoogleCalendarURL builds a Google Calendar "quick add" deep link for ev.
// Timed events are converted from the exporter's timezone to UTC; all-day
// blocks stay plain dates. The date derivation matches ICSDocument,
// including the first-of-month / January-1 anchoring for incomplete dates,
// so the link never fails either.
func (x *Exporter) GoogleCalendarURL(ev model.Event) string {
	start, end, allDay := eventWindow(ev.Date)

	var dates string
	if allDay {
		dates = start.Format(icalDateLayout) + "/" + end.Format(icalDateLayout)
	} else {
		s := time.Date(start.Year(), start.Month(), start.Day(), start.Hour(), start.Minute(), 0, 0, x.loc)
		e := s.Add(end.Sub(start))
		dates = s.UTC().Format(compactUTCLayout) + "/" + e.UTC().Format(compactUTCLayout)
	}

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", ev.Title)
	q.Set("details", ev.Description)
	q.Set("location", ev.Location)
	q.Set("dates", dates)

	return googleRenderURL + "?" + q.Encode()
}
