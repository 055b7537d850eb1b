package model

// Category classifies an event for display and calendar export.
type Category string

const (
	CategoryCSD     Category = "csd"
	CategoryFetish  Category = "fetish"
	CategoryPrivate Category = "private"
	CategoryOther   Category = "other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCSD, CategoryFetish, CategoryPrivate, CategoryOther:
		return true
	}
	return false
}

// Granularity describes how much of a PartialDate is actually known.
type Granularity int

const (
	// GranularityYear: only the year is fixed.
	GranularityYear Granularity = iota
	// GranularityYearMonth: year and month are fixed, the day is open.
	GranularityYearMonth
	// GranularityFull: year, month and day are fixed (time may still be open).
	GranularityFull
)

// PartialDate is a calendar date known only down to one of three levels:
// year, year+month, or full year+month+day with an optional "HH:MM" time.
// Zero means unknown for Month and Day; an empty string means unknown for
// Time. Year is always present.
//
// The field hierarchy is strict: a Day is only meaningful together with a
// Month, and a Time only together with a Day. Normalize enforces this so
// that comparison and formatting never see a stray combination.
type PartialDate struct {
	Year  int    `json:"year"`
	Month int    `json:"month,omitempty"`
	Day   int    `json:"day,omitempty"`
	Time  string `json:"time,omitempty"`
}

// Granularity returns the known level of d. Call Normalize first if the
// date comes from an external document.
func (d PartialDate) Granularity() Granularity {
	switch {
	case d.Month == 0:
		return GranularityYear
	case d.Day == 0:
		return GranularityYearMonth
	default:
		return GranularityFull
	}
}

// Normalize drops fields that violate the hierarchy: a Day without a Month
// and a Time without a Day.
func (d *PartialDate) Normalize() {
	if d.Month == 0 {
		d.Day = 0
	}
	if d.Day == 0 {
		d.Time = ""
	}
}

// YMD is a fully specified calendar date, used where a partial date would
// make no sense (e.g. the day a registration opens).
type YMD struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Registration describes whether and how attendees sign up for an event.
type Registration struct {
	Required bool   `json:"required"`
	Open     bool   `json:"open"`
	OpensAt  *YMD   `json:"opensAt,omitempty"`
	Link     string `json:"link,omitempty"`
}

// Price holds optional admission amounts. Currency defaults to EUR when
// empty.
type Price struct {
	Regular  float64 `json:"regular,omitempty"`
	Reduced  float64 `json:"reduced,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

// Event is the central entity of the schedule. The Date field is the only
// structurally significant one; everything else is display data.
type Event struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Category     Category     `json:"category"`
	Date         PartialDate  `json:"date"`
	Location     string       `json:"location"`
	Description  string       `json:"description"`
	IsExternal   bool         `json:"isExternal,omitempty"`
	Featured     bool         `json:"featured,omitempty"`
	Registration Registration `json:"registration"`
	Price        *Price       `json:"price,omitempty"`
}

// Normalize sanitizes fields that arrive from an external document.
func (e *Event) Normalize() {
	e.Date.Normalize()
	if !e.Category.Valid() {
		e.Category = CategoryOther
	}
}
