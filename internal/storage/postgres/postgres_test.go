package postgres

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"estate-booking/internal/models"
	"estate-booking/pkg/response"

	"github.com/lib/pq"
)

// rowStub feeds fixed column values to a Scan call.
type rowStub []any

func (r rowStub) Scan(dest ...any) error {
	if len(dest) != len(r) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(r))
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r[i]))
	}
	return nil
}

func TestOpeningHoursRoundTrip(t *testing.T) {
	t.Parallel()

	hours := &models.OpeningHours{
		ID:           "oh-1",
		Owner:        "agent-1",
		Monday:       []models.TimeRange{{From: "09:00", To: "12:00"}},
		Sunday:       []models.TimeRange{{From: "13:00", To: "17:00"}},
		Availability: models.AvailabilityUnavailable,
		UpdatedAt:    time.Date(2025, 1, 8, 8, 0, 0, 0, time.UTC),
	}

	args, err := openingHoursArgs(hours)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 11 {
		t.Fatalf("expected 11 args, got %d", len(args))
	}
	if args[3] != "[]" {
		t.Fatalf("closed days must be stored as an empty array, got %v", args[3])
	}

	row := rowStub{args[0], args[1]}
	for _, a := range args[2:9] {
		row = append(row, []byte(a.(string)))
	}
	row = append(row, args[9], args[10])

	got, err := scanOpeningHours(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.Monday, hours.Monday) || !reflect.DeepEqual(got.Sunday, hours.Sunday) {
		t.Fatalf("ranges lost in round trip: %+v", got)
	}
	if len(got.Tuesday) != 0 || got.Availability != models.AvailabilityUnavailable {
		t.Fatalf("unexpected decoded hours %+v", got)
	}
}

func TestScanAppointment(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 1, 8, 8, 0, 0, 0, time.UTC)
	base := rowStub{
		"a-1", "agent-1", "call", "2025-01-12", "14:00", "14:30",
		[]byte(`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","phone":"1"}`),
		"pricing", "", "rescheduled",
		[]byte(`{"isRescheduled":true,"previousDates":[{"date":"2025-01-09","bookedTime":{"from":"10:00","to":"10:30"}}]}`),
		created, created,
	}

	a, err := scanAppointment(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != models.StatusRescheduled || a.Customer.FirstName != "Ada" {
		t.Fatalf("unexpected appointment %+v", a)
	}
	if a.Reschedule == nil || len(a.Reschedule.PreviousDates) != 1 || a.Reschedule.PreviousDates[0].BookedTime.From != "10:00" {
		t.Fatalf("unexpected history %+v", a.Reschedule)
	}

	fresh := append(rowStub{}, base...)
	fresh[10] = []byte(nil)
	a, err = scanAppointment(fresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Reschedule != nil {
		t.Fatalf("NULL history must decode to nil, got %+v", a.Reschedule)
	}
}

func TestAppointmentJSON(t *testing.T) {
	t.Parallel()

	_, reschedule, err := appointmentJSON(&models.Appointment{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reschedule != nil {
		t.Fatalf("missing history must be NULL, got %v", reschedule)
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code pq.ErrorCode
		want error
	}{
		{"23505", response.ErrConflict},
		{"23P01", response.ErrSlotNotAvailable},
		{"55P03", response.ErrLocked},
	}
	for _, tc := range cases {
		err := mapError(fmt.Errorf("exec: %w", &pq.Error{Code: tc.code}))
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.code, tc.want, err)
		}
	}

	other := errors.New("boom")
	if mapError(other) != other {
		t.Fatalf("unknown errors must pass through")
	}
	if mapError(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}
