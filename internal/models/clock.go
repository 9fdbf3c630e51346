package models

import (
	"fmt"
	"time"

	"estate-booking/pkg/response"
)

const (
	ClockLayout = "15:04"
	DateLayout  = "2006-01-02"
)

// ParseClock converts an HH:mm wall-clock time to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, response.NewValidationError("time", fmt.Sprintf("%q is not a valid HH:mm time", s))
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, response.NewValidationError("date", fmt.Sprintf("%q is not a valid YYYY-MM-DD date", s))
	}
	return d, nil
}

// TimeRange is a local wall-clock interval [From, To).
type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (r TimeRange) Minutes() (int, int, error) {
	from, err := ParseClock(r.From)
	if err != nil {
		return 0, 0, err
	}
	to, err := ParseClock(r.To)
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

// Validate checks the range is well formed and non-empty.
func (r TimeRange) Validate() error {
	from, to, err := r.Minutes()
	if err != nil {
		return err
	}
	if from >= to {
		return response.NewValidationError("to", fmt.Sprintf("range %s-%s must end after it starts", r.From, r.To))
	}
	return nil
}

// Overlaps reports whether two half-open ranges share any minute. Malformed
// ranges never overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	af, at, err := r.Minutes()
	if err != nil {
		return false
	}
	bf, bt, err := o.Minutes()
	if err != nil {
		return false
	}
	return af < bt && bf < at
}

func (r TimeRange) String() string {
	return r.From + "-" + r.To
}

// RangeFrom builds the range that starts at from and lasts d.
func RangeFrom(from string, d time.Duration) (TimeRange, error) {
	start, err := ParseClock(from)
	if err != nil {
		return TimeRange{}, err
	}
	end := start + int(d/time.Minute)
	if end >= 24*60 {
		return TimeRange{}, response.NewValidationError("from", fmt.Sprintf("%s does not leave room for a %s appointment", from, d))
	}
	return TimeRange{From: FormatClock(start), To: FormatClock(end)}, nil
}
