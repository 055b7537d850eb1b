package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcal/internal/model"
)

func TestSortChronologically(t *testing.T) {
	t.Run("dated event before undated event in same month", func(t *testing.T) {
		a := model.Event{ID: "a", Date: model.PartialDate{Year: 2025, Month: 5, Day: 1}}
		b := model.Event{ID: "b", Date: model.PartialDate{Year: 2025, Month: 5}}

		sorted := SortChronologically([]model.Event{b, a})

		require.Len(t, sorted, 2)
		assert.Equal(t, "a", sorted[0].ID)
		assert.Equal(t, "b", sorted[1].ID)
	})

	t.Run("stable for equal dates", func(t *testing.T) {
		events := []model.Event{
			{ID: "first", Date: model.PartialDate{Year: 2025}},
			{ID: "second", Date: model.PartialDate{Year: 2025}},
			{ID: "third", Date: model.PartialDate{Year: 2025}},
		}

		sorted := SortChronologically(events)

		assert.Equal(t, "first", sorted[0].ID)
		assert.Equal(t, "second", sorted[1].ID)
		assert.Equal(t, "third", sorted[2].ID)
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		events := []model.Event{
			{ID: "late", Date: model.PartialDate{Year: 2026}},
			{ID: "early", Date: model.PartialDate{Year: 2024}},
		}

		SortChronologically(events)

		assert.Equal(t, "late", events[0].ID)
	})
}

func TestPartitionPastFuture(t *testing.T) {
	ref := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)

	events := []model.Event{
		{ID: "past-full", Date: model.PartialDate{Year: 2025, Month: 5, Day: 1}},
		{ID: "past-month-only", Date: model.PartialDate{Year: 2025, Month: 4}},
		{ID: "year-only", Date: model.PartialDate{Year: 2020}},
		{ID: "today", Date: model.PartialDate{Year: 2025, Month: 6, Day: 1}},
		{ID: "future", Date: model.PartialDate{Year: 2025, Month: 8, Day: 12}},
	}

	past, upcoming := PartitionPastFuture(events, ref)

	ids := func(evs []model.Event) []string {
		out := make([]string, 0, len(evs))
		for _, ev := range evs {
			out = append(out, ev.ID)
		}
		return out
	}

	// A missing day defaults to the 1st; a missing month exempts the event
	// from ever being past, even for a long-gone year.
	assert.ElementsMatch(t, []string{"past-full", "past-month-only"}, ids(past))
	assert.ElementsMatch(t, []string{"year-only", "today", "future"}, ids(upcoming))
}

func TestNextFeaturedEvent(t *testing.T) {
	ref := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)

	t.Run("nil when nothing is featured", func(t *testing.T) {
		events := []model.Event{
			{ID: "a", Date: model.PartialDate{Year: 2025, Month: 7, Day: 1}},
		}
		assert.Nil(t, NextFeaturedEvent(events, ref))
	})

	t.Run("nil when featured events have no month", func(t *testing.T) {
		events := []model.Event{
			{ID: "a", Featured: true, Date: model.PartialDate{Year: 2025}},
			{ID: "b", Featured: true, Date: model.PartialDate{Year: 2026}},
		}
		assert.Nil(t, NextFeaturedEvent(events, ref))
	})

	t.Run("events without a day are skipped", func(t *testing.T) {
		events := []model.Event{
			{ID: "month-only", Featured: true, Date: model.PartialDate{Year: 2025, Month: 7}},
			{ID: "full", Featured: true, Date: model.PartialDate{Year: 2025, Month: 8, Day: 2}},
		}

		next := NextFeaturedEvent(events, ref)
		require.NotNil(t, next)
		assert.Equal(t, "full", next.ID)
	})

	t.Run("picks the chronologically first upcoming featured event", func(t *testing.T) {
		events := []model.Event{
			{ID: "later", Featured: true, Date: model.PartialDate{Year: 2025, Month: 9, Day: 1}},
			{ID: "past", Featured: true, Date: model.PartialDate{Year: 2025, Month: 5, Day: 30}},
			{ID: "sooner", Featured: true, Date: model.PartialDate{Year: 2025, Month: 7, Day: 19}},
			{ID: "unfeatured", Featured: false, Date: model.PartialDate{Year: 2025, Month: 6, Day: 10}},
		}

		next := NextFeaturedEvent(events, ref)
		require.NotNil(t, next)
		assert.Equal(t, "sooner", next.ID)
	})

	t.Run("an event on the reference day still counts", func(t *testing.T) {
		events := []model.Event{
			{ID: "today", Featured: true, Date: model.PartialDate{Year: 2025, Month: 6, Day: 1}},
		}

		next := NextFeaturedEvent(events, ref)
		require.NotNil(t, next)
		assert.Equal(t, "today", next.ID)
	})
}

func TestEventRegistrationStatus(t *testing.T) {
	tests := []struct {
		name      string
		reg       model.Registration
		wantState RegistrationState
		wantLabel string
	}{
		{
			name:      "not required",
			reg:       model.Registration{Required: false},
			wantState: RegistrationNotRequired,
			wantLabel: "Keine Anmeldung erforderlich",
		},
		{
			name:      "open",
			reg:       model.Registration{Required: true, Open: true},
			wantState: RegistrationOpen,
			wantLabel: "Jetzt anmelden",
		},
		{
			name:      "opens at a known date",
			reg:       model.Registration{Required: true, OpensAt: &model.YMD{Year: 2025, Month: 1, Day: 2}},
			wantState: RegistrationOpensAt,
			wantLabel: "Anmeldung ab 2. Januar 2025",
		},
		{
			name:      "required but nothing announced",
			reg:       model.Registration{Required: true},
			wantState: RegistrationTBA,
			wantLabel: "Anmeldung wird noch bekannt gegeben",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := EventRegistrationStatus(model.Event{Registration: tt.reg})
			assert.Equal(t, tt.wantState, status.State)
			assert.Equal(t, tt.wantLabel, status.Label())
		})
	}
}
