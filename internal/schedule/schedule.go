package schedule

import (
	"fmt"
	"sort"
	"time"

	"eventcal/internal/model"
)

// SortChronologically returns a new slice sorted by CompareDates. The sort
// is stable, so events with indistinguishable dates keep their source order.
func SortChronologically(events []model.Event) []model.Event {
	sorted := make([]model.Event, len(events))
	copy(sorted, events)

	sort.SliceStable(sorted, func(i, j int) bool {
		return CompareDates(sorted[i].Date, sorted[j].Date) < 0
	})
	return sorted
}

// midnightOf truncates ref to the start of its day, in ref's location.
func midnightOf(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
}

// PartitionPastFuture splits events around the reference instant's midnight.
// An event counts as past only when its month is known; a missing day
// defaults to the 1st. Year-only events are never past; an announced but
// undated event cannot expire.
func PartitionPastFuture(events []model.Event, ref time.Time) (past, upcoming []model.Event) {
	midnight := midnightOf(ref)

	for _, ev := range events {
		d := ev.Date
		if d.Month == 0 {
			upcoming = append(upcoming, ev)
			continue
		}

		day := d.Day
		if day == 0 {
			day = 1
		}
		when := time.Date(d.Year, time.Month(d.Month), day, 0, 0, 0, 0, ref.Location())

		if when.Before(midnight) {
			past = append(past, ev)
		} else {
			upcoming = append(upcoming, ev)
		}
	}
	return past, upcoming
}

// NextFeaturedEvent returns the first featured event, in chronological
// order, whose date is on or after the reference instant's midnight. Events
// without a full date are skipped: there is nothing to count down to. Nil
// when no featured event qualifies.
func NextFeaturedEvent(events []model.Event, ref time.Time) *model.Event {
	midnight := midnightOf(ref)

	featured := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Featured {
			featured = append(featured, ev)
		}
	}

	for _, ev := range SortChronologically(featured) {
		d := ev.Date
		if d.Month == 0 || d.Day == 0 {
			continue
		}

		when := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, ref.Location())
		if !when.Before(midnight) {
			next := ev
			return &next
		}
	}
	return nil
}

// RegistrationState enumerates the sign-up situation of an event.
type RegistrationState int

const (
	// RegistrationNotRequired: attendees just show up.
	RegistrationNotRequired RegistrationState = iota
	// RegistrationOpen: sign-up is possible right now.
	RegistrationOpen
	// RegistrationOpensAt: sign-up starts on a known date.
	RegistrationOpensAt
	// RegistrationTBA: sign-up is required but no opening date is known.
	RegistrationTBA
)

// RegistrationStatus is the resolved sign-up state of one event. OpensAt is
// only meaningful for RegistrationOpensAt.
type RegistrationStatus struct {
	State   RegistrationState
	OpensAt model.YMD
}

// EventRegistrationStatus derives the registration status of ev.
func EventRegistrationStatus(ev model.Event) RegistrationStatus {
	reg := ev.Registration

	switch {
	case !reg.Required:
		return RegistrationStatus{State: RegistrationNotRequired}
	case reg.Open:
		return RegistrationStatus{State: RegistrationOpen}
	case reg.OpensAt != nil:
		return RegistrationStatus{State: RegistrationOpensAt, OpensAt: *reg.OpensAt}
	default:
		return RegistrationStatus{State: RegistrationTBA}
	}
}

// Label renders the status as the display string used on the site.
func (s RegistrationStatus) Label() string {
	switch s.State {
	case RegistrationNotRequired:
		return "Keine Anmeldung erforderlich"
	case RegistrationOpen:
		return "Jetzt anmelden"
	case RegistrationOpensAt:
		return fmt.Sprintf("Anmeldung ab %d. %s %d", s.OpensAt.Day, MonthName(s.OpensAt.Month), s.OpensAt.Year)
	default:
		return "Anmeldung wird noch bekannt gegeben"
	}
}
