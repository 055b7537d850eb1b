package schedule

import (
	"fmt"
	"time"

	"eventcal/internal/model"
)

// MonthTBA is the grouping bucket for events whose month is not yet fixed.
// It sorts after December so undated events close out their year.
const MonthTBA = 13

var monthNames = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

var weekdayNames = [...]string{
	"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag",
}

// MonthName returns the German month name for 1–12, the TBA label for the
// MonthTBA bucket, and an empty string otherwise.
func MonthName(month int) string {
	if month == MonthTBA {
		return "Termin wird noch bekannt gegeben"
	}
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// CompareDates imposes a total order on partial dates:
//
//  1. years decide first;
//  2. within a year, known months in calendar order, unknown month last;
//  3. within a month, known days in calendar order, unknown day last;
//  4. anything still tied compares equal (callers keep source order).
//
// The result is negative when a sorts before b, zero on ties, positive
// otherwise.
func CompareDates(a, b model.PartialDate) int {
	if a.Year != b.Year {
		return a.Year - b.Year
	}

	if a.Month != 0 && b.Month != 0 {
		if a.Month != b.Month {
			return a.Month - b.Month
		}
		if a.Day != 0 && b.Day != 0 {
			return a.Day - b.Day
		}
		if a.Day == 0 && b.Day != 0 {
			return 1
		}
		if b.Day == 0 && a.Day != 0 {
			return -1
		}
		return 0
	}

	if a.Month == 0 && b.Month != 0 {
		return 1
	}
	if b.Month == 0 && a.Month != 0 {
		return -1
	}
	return 0
}

// FormatDate renders a partial date for display. Unknown components get an
// explicit announcement note instead of a placeholder value:
//
//	full date with time: "Samstag, 19.07.2025 (12:00 Uhr)"
//	full date, no time:  "Samstag, 19.07.2025 (Uhrzeit wird noch bekannt gegeben)"
//	year + month:        "Juli 2025 (Tag wird noch bekannt gegeben)"
//	year only:           "2025 (Termin wird noch bekannt gegeben)"
func FormatDate(d model.PartialDate) string {
	switch d.Granularity() {
	case model.GranularityYear:
		return fmt.Sprintf("%d (Termin wird noch bekannt gegeben)", d.Year)
	case model.GranularityYearMonth:
		return fmt.Sprintf("%s %d (Tag wird noch bekannt gegeben)", MonthName(d.Month), d.Year)
	}

	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	s := fmt.Sprintf("%s, %02d.%02d.%d", weekdayNames[t.Weekday()], d.Day, d.Month, d.Year)

	if d.Time != "" {
		return s + " (" + d.Time + " Uhr)"
	}
	return s + " (Uhrzeit wird noch bekannt gegeben)"
}

// GroupByYearMonth buckets events by year, then by month. Events without a
// month land in the reserved MonthTBA bucket of their year, so they still
// group predictably. No event is dropped or duplicated.
func GroupByYearMonth(events []model.Event) map[int]map[int][]model.Event {
	grouped := make(map[int]map[int][]model.Event)

	for _, ev := range events {
		year := ev.Date.Year
		month := ev.Date.Month
		if month == 0 {
			month = MonthTBA
		}

		if grouped[year] == nil {
			grouped[year] = make(map[int][]model.Event)
		}
		grouped[year][month] = append(grouped[year][month], ev)
	}

	return grouped
}
