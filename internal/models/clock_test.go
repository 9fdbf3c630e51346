package models

import (
	"errors"
	"testing"
	"time"

	"estate-booking/pkg/response"
)

func TestParseClock(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if !errors.Is(err, response.ErrValidation) {
				t.Fatalf("%q: expected validation error, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %d, %v", tc.in, got, err)
		}
		if FormatClock(got) != tc.in {
			t.Fatalf("%q: formatted back as %q", tc.in, FormatClock(got))
		}
	}
}

func TestTimeRangeValidate(t *testing.T) {
	t.Parallel()

	if err := (TimeRange{From: "09:00", To: "12:00"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range []TimeRange{{"12:00", "09:00"}, {"09:00", "09:00"}, {"9", "10:00"}} {
		if err := r.Validate(); !errors.Is(err, response.ErrValidation) {
			t.Fatalf("%v: expected validation error, got %v", r, err)
		}
	}
}

func TestTimeRangeOverlaps(t *testing.T) {
	t.Parallel()

	base := TimeRange{From: "10:00", To: "10:30"}
	cases := []struct {
		other TimeRange
		want  bool
	}{
		{TimeRange{"09:30", "10:00"}, false},
		{TimeRange{"10:30", "11:00"}, false},
		{TimeRange{"09:45", "10:15"}, true},
		{TimeRange{"10:10", "10:20"}, true},
		{TimeRange{"09:00", "12:00"}, true},
	}
	for _, tc := range cases {
		if got := base.Overlaps(tc.other); got != tc.want {
			t.Fatalf("%v overlaps %v: got %v", base, tc.other, got)
		}
		if got := tc.other.Overlaps(base); got != tc.want {
			t.Fatalf("overlap must be symmetric for %v", tc.other)
		}
	}
}

func TestRangeFrom(t *testing.T) {
	t.Parallel()

	r, err := RangeFrom("14:00", HouseTouringDuration)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.From != "14:00" || r.To != "14:40" {
		t.Fatalf("unexpected range %v", r)
	}
	if _, err := RangeFrom("23:45", CallDuration); !errors.Is(err, response.ErrValidation) {
		t.Fatalf("expected validation error past midnight, got %v", err)
	}
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()

	cases := map[string]time.Weekday{
		"mon":     time.Monday,
		"Tuesday": time.Tuesday,
		"7":       time.Sunday,
		"0":       time.Sunday,
		"6":       time.Saturday,
		" fri ":   time.Friday,
	}
	for in, want := range cases {
		got, ok := ParseWeekday(in)
		if !ok || got != want {
			t.Fatalf("%q: got %v, %v", in, got, ok)
		}
	}
	for _, bad := range []string{"", "8", "someday"} {
		if _, ok := ParseWeekday(bad); ok {
			t.Fatalf("%q should not parse", bad)
		}
	}
}

func TestOpeningHoursRanges(t *testing.T) {
	t.Parallel()

	var o OpeningHours
	o.SetRanges(time.Monday, []TimeRange{{"09:00", "12:00"}})
	if got := o.Ranges(time.Monday); len(got) != 1 || got[0].From != "09:00" {
		t.Fatalf("unexpected monday ranges %v", got)
	}
	if len(o.Monday) != 1 {
		t.Fatalf("SetRanges must write the weekday field")
	}
	if len(o.Ranges(time.Tuesday)) != 0 {
		t.Fatalf("tuesday should be empty")
	}
	if !o.Open() {
		t.Fatalf("zero availability should count as open")
	}
	o.Availability = AvailabilityUnavailable
	if o.Open() {
		t.Fatalf("unavailable hours must be closed")
	}
}
