// Package slots turns weekly opening hours and existing bookings into
// bookable start times.
package slots

import (
	"sort"
	"time"

	"estate-booking/internal/models"
)

// Request describes one window to generate. Start is truncated to its date
// in Start's location; Now must be in the same location.
type Request struct {
	Hours    models.OpeningHours
	Start    time.Time
	Days     int
	Duration time.Duration
	// Booked holds the non-cancelled bookings of the owner keyed by date.
	Booked map[string][]models.TimeRange
	// Now hides starts that already passed. The zero value disables it.
	Now time.Time
}

// Generate returns one entry per date, in ascending order and without gaps.
// Dates without qualifying starts are kept with an empty list.
func Generate(req Request) []models.DateSlots {
	if req.Days <= 0 {
		return []models.DateSlots{}
	}

	day := truncateToDate(req.Start)
	out := make([]models.DateSlots, 0, req.Days)

	for i := 0; i < req.Days; i++ {
		key := day.Format(models.DateLayout)
		out = append(out, models.DateSlots{
			Date:  key,
			Slots: ForDate(req.Hours, day, req.Duration, req.Booked[key], req.Now),
		})
		day = day.AddDate(0, 0, 1)
	}

	return out
}

// ForDate lists the start times on date for an appointment of length d.
// A start qualifies when [start, start+d) fits inside one opening range,
// overlaps no booked range and lies after now.
func ForDate(hours models.OpeningHours, date time.Time, d time.Duration, booked []models.TimeRange, now time.Time) []string {
	out := []string{}
	step := int(d / time.Minute)
	if !hours.Open() || step <= 0 {
		return out
	}

	cutoff := -1
	if !now.IsZero() {
		today := truncateToDate(now)
		date = truncateToDate(date)
		switch {
		case date.Before(today):
			return out
		case date.Equal(today):
			cutoff = now.Hour()*60 + now.Minute()
		}
	}

	busy := make([][2]int, 0, len(booked))
	for _, b := range booked {
		from, to, err := b.Minutes()
		if err != nil {
			continue
		}
		busy = append(busy, [2]int{from, to})
	}

	for _, r := range hours.Ranges(date.Weekday()) {
		from, to, err := r.Minutes()
		if err != nil || from >= to {
			continue
		}
		for start := from; start+step <= to; start += step {
			if start <= cutoff {
				continue
			}
			if overlapsAny(start, start+step, busy) {
				continue
			}
			out = append(out, models.FormatClock(start))
		}
	}

	return Normalize(out)
}

// Normalize drops malformed and duplicate entries and sorts the rest by time
// of day.
func Normalize(slots []string) []string {
	seen := make(map[int]struct{}, len(slots))
	mins := make([]int, 0, len(slots))
	for _, s := range slots {
		m, err := models.ParseClock(s)
		if err != nil {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		mins = append(mins, m)
	}
	sort.Ints(mins)

	out := make([]string, len(mins))
	for i, m := range mins {
		out[i] = models.FormatClock(m)
	}
	return out
}

// Contains reports whether start is one of slots, comparing by time of day.
func Contains(slots []string, start string) bool {
	want, err := models.ParseClock(start)
	if err != nil {
		return false
	}
	for _, s := range slots {
		if m, err := models.ParseClock(s); err == nil && m == want {
			return true
		}
	}
	return false
}

func overlapsAny(from, to int, busy [][2]int) bool {
	for _, b := range busy {
		if from < b[1] && b[0] < to {
			return true
		}
	}
	return false
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
