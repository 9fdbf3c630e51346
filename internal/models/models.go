package models

import (
	"strconv"
	"strings"
	"time"
)

type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

func (a Availability) Valid() bool {
	return a == AvailabilityAvailable || a == AvailabilityUnavailable
}

// OpeningHours is an agent's weekly recurring availability template.
type OpeningHours struct {
	ID           string       `json:"_id" db:"id"`
	Owner        string       `json:"owner" db:"owner"`
	Monday       []TimeRange  `json:"monday" db:"monday"`
	Tuesday      []TimeRange  `json:"tuesday" db:"tuesday"`
	Wednesday    []TimeRange  `json:"wednesday" db:"wednesday"`
	Thursday     []TimeRange  `json:"thursday" db:"thursday"`
	Friday       []TimeRange  `json:"friday" db:"friday"`
	Saturday     []TimeRange  `json:"saturday" db:"saturday"`
	Sunday       []TimeRange  `json:"sunday" db:"sunday"`
	Availability Availability `json:"availability" db:"availability"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

func (o *OpeningHours) day(d time.Weekday) *[]TimeRange {
	switch d {
	case time.Monday:
		return &o.Monday
	case time.Tuesday:
		return &o.Tuesday
	case time.Wednesday:
		return &o.Wednesday
	case time.Thursday:
		return &o.Thursday
	case time.Friday:
		return &o.Friday
	case time.Saturday:
		return &o.Saturday
	default:
		return &o.Sunday
	}
}

// Ranges returns the ranges configured for the given weekday.
func (o *OpeningHours) Ranges(d time.Weekday) []TimeRange {
	return *o.day(d)
}

func (o *OpeningHours) SetRanges(d time.Weekday, ranges []TimeRange) {
	*o.day(d) = ranges
}

// Open reports whether any slot can be generated at all.
func (o *OpeningHours) Open() bool {
	return o.Availability != AvailabilityUnavailable
}

// ParseWeekday accepts "mon", "monday", "Mon", ISO numbers 1..7 (Mon..Sun)
// and 0 for Sunday.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		switch {
		case n == 0 || n == 7:
			return time.Sunday, true
		case n >= 1 && n <= 6:
			return time.Weekday(n), true
		}
		return 0, false
	}

	switch s {
	case "sun", "sunday":
		return time.Sunday, true
	case "mon", "monday":
		return time.Monday, true
	case "tue", "tues", "tuesday":
		return time.Tuesday, true
	case "wed", "wednesday":
		return time.Wednesday, true
	case "thu", "thur", "thursday":
		return time.Thursday, true
	case "fri", "friday":
		return time.Friday, true
	case "sat", "saturday":
		return time.Saturday, true
	default:
		return 0, false
	}
}

// DateSlots is one date of an availability window with its open start times.
type DateSlots struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// AvailabilityWindow is derived on every request and never persisted.
type AvailabilityWindow struct {
	Type  AppointmentType `json:"type"`
	Owner string          `json:"owner"`
	Dates []DateSlots     `json:"dates"`
}
