package export

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcal/internal/model"
)

func mustParseQuery(t *testing.T, link string) url.Values {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "calendar.google.com", u.Host)
	assert.Equal(t, "/calendar/render", u.Path)
	return u.Query()
}

func TestGoogleCalendarURLTimedEvent(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	x := New(berlin)
	q := mustParseQuery(t, x.GoogleCalendarURL(testEvent()))

	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "CSD Rostock", q.Get("text"))
	assert.Equal(t, "Neuer Markt, Rostock", q.Get("location"))

	// 12:00 CEST is 10:00 UTC; the default duration is two hours.
	assert.Equal(t, "20250719T100000Z/20250719T120000Z", q.Get("dates"))
}

func TestGoogleCalendarURLAllDayEvent(t *testing.T) {
	ev := testEvent()
	ev.Date = model.PartialDate{Year: 2025, Month: 7, Day: 19}

	x := New(time.UTC)
	q := mustParseQuery(t, x.GoogleCalendarURL(ev))

	assert.Equal(t, "20250719/20250720", q.Get("dates"))
}

func TestGoogleCalendarURLIncompleteDates(t *testing.T) {
	x := New(time.UTC)

	ev := testEvent()
	ev.Date = model.PartialDate{Year: 2025, Month: 7}
	q := mustParseQuery(t, x.GoogleCalendarURL(ev))
	assert.Equal(t, "20250701/20250702", q.Get("dates"))

	ev.Date = model.PartialDate{Year: 2025}
	q = mustParseQuery(t, x.GoogleCalendarURL(ev))
	assert.Equal(t, "20250101/20250102", q.Get("dates"))
}

func TestGoogleCalendarURLEncodesText(t *testing.T) {
	ev := testEvent()
	ev.Title = "Tau & Werk"
	ev.Description = "Workshop für Einsteiger"

	x := New(time.UTC)
	link := x.GoogleCalendarURL(ev)

	assert.NotContains(t, link, " ")
	q := mustParseQuery(t, link)
	assert.Equal(t, "Tau & Werk", q.Get("text"))
	assert.Equal(t, "Workshop für Einsteiger", q.Get("details"))
}
