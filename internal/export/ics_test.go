package export

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcal/internal/model"
)

var exportNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testEvent() model.Event {
	return model.Event{
		ID:       "csd-hro",
		Title:    "CSD Rostock",
		Category: model.CategoryCSD,
		Date:     model.PartialDate{Year: 2025, Month: 7, Day: 19, Time: "12:00"},
		Location: "Neuer Markt, Rostock",
		Registration: model.Registration{
			Required: false,
			Open:     true,
		},
	}
}

func TestICSDocumentTimedEvent(t *testing.T) {
	x := New(time.UTC)
	doc := x.ICSDocument(testEvent(), exportNow)

	assert.Contains(t, doc, "BEGIN:VCALENDAR")
	assert.Contains(t, doc, "END:VCALENDAR")
	assert.Contains(t, doc, "PRODID:-//Tauwerk//Events//DE")
	assert.Contains(t, doc, "METHOD:PUBLISH")
	assert.Contains(t, doc, "CALSCALE:GREGORIAN")
	assert.Contains(t, doc, "UID:csd-hro@tauwerk.de")
	assert.Contains(t, doc, "DTSTAMP:20250601T120000Z")

	// Timed events keep floating wall-clock time and get the default
	// two-hour duration.
	assert.Contains(t, doc, "DTSTART:20250719T120000")
	assert.Contains(t, doc, "DTEND:20250719T140000")

	assert.Contains(t, doc, "SUMMARY:CSD Rostock")
	assert.Contains(t, doc, "STATUS:CONFIRMED")
	assert.Contains(t, doc, "CATEGORIES:CSD")

	// The interchange format is CRLF-delimited.
	assert.Contains(t, doc, "\r\n")
	for _, line := range strings.Split(doc, "\r\n") {
		assert.NotContains(t, line, "\n")
	}
}

func TestICSDocumentWholeDayBlocks(t *testing.T) {
	x := New(time.UTC)

	tests := []struct {
		name      string
		date      model.PartialDate
		wantStart string
		wantEnd   string
	}{
		{
			name:      "full date without time is a one-day block",
			date:      model.PartialDate{Year: 2025, Month: 7, Day: 19},
			wantStart: "DTSTART:20250719",
			wantEnd:   "DTEND:20250720",
		},
		{
			name:      "month without day anchors to the first of the month",
			date:      model.PartialDate{Year: 2025, Month: 7},
			wantStart: "DTSTART:20250701",
			wantEnd:   "DTEND:20250702",
		},
		{
			name:      "year only anchors to January 1",
			date:      model.PartialDate{Year: 2025},
			wantStart: "DTSTART:20250101",
			wantEnd:   "DTEND:20250102",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := testEvent()
			ev.Date = tt.date

			doc := x.ICSDocument(ev, exportNow)
			assert.Contains(t, doc, tt.wantStart)
			assert.Contains(t, doc, tt.wantEnd)
		})
	}
}

func TestICSDocumentEscapesTextOnce(t *testing.T) {
	ev := testEvent()
	ev.Title = `Knoten; Taue, Segel` + "\n" + `Werft\Halle`
	ev.Description = "a,b;c"

	x := New(time.UTC)
	doc := x.ICSDocument(ev, exportNow)

	assert.Contains(t, doc, `SUMMARY:Knoten\; Taue\, Segel\nWerft\\Halle`)
	assert.Contains(t, doc, `DESCRIPTION:a\,b\;c`)

	// No double escaping anywhere.
	assert.NotContains(t, doc, `\\;`)
	assert.NotContains(t, doc, `\\,`)
	assert.NotContains(t, doc, `\\n`)
}

func TestICSDocumentRegistrationLink(t *testing.T) {
	ev := testEvent()
	x := New(time.UTC)

	doc := x.ICSDocument(ev, exportNow)
	assert.NotContains(t, doc, "URL:")

	ev.Registration.Link = "https://example.org/anmeldung"
	doc = x.ICSDocument(ev, exportNow)
	assert.Contains(t, doc, "URL:https://example.org/anmeldung")
}

func TestICSDocumentRoundTrips(t *testing.T) {
	x := New(time.UTC)
	doc := x.ICSDocument(testEvent(), exportNow)

	cal, err := ical.ParseCalendar(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)

	uid := cal.Events()[0].GetProperty(ical.ComponentPropertyUniqueId)
	require.NotNil(t, uid)
	assert.Equal(t, "csd-hro@tauwerk.de", uid.Value)
}

func TestICSFilename(t *testing.T) {
	assert.Equal(t, "csd-hro.ics", ICSFilename(testEvent()))
}
