package models

import (
	"fmt"
	"time"

	"estate-booking/pkg/response"
)

type AppointmentType string

const (
	TypeCall         AppointmentType = "call"
	TypeHouseTouring AppointmentType = "house_touring"
)

// Appointment lengths. The public booking flow once used 45 minutes for calls
// while rescheduling used 30; CallDuration is the only value used anywhere.
const (
	CallDuration         = 30 * time.Minute
	HouseTouringDuration = 40 * time.Minute
)

func (t AppointmentType) Valid() bool {
	return t == TypeCall || t == TypeHouseTouring
}

// Duration is the fixed length of an appointment of this type.
func (t AppointmentType) Duration() (time.Duration, error) {
	switch t {
	case TypeCall:
		return CallDuration, nil
	case TypeHouseTouring:
		return HouseTouringDuration, nil
	default:
		return 0, response.NewValidationError("type", fmt.Sprintf("unknown appointment type %q", t))
	}
}

type Status string

const (
	StatusUpcoming    Status = "upcoming"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

type Action string

const (
	ActionComplete   Action = "complete"
	ActionCancel     Action = "cancel"
	ActionReschedule Action = "reschedule"
)

// transitions is the whole appointment lifecycle. Statuses without an entry
// are terminal.
var transitions = map[Status]map[Action]Status{
	StatusUpcoming: {
		ActionComplete:   StatusCompleted,
		ActionCancel:     StatusCancelled,
		ActionReschedule: StatusRescheduled,
	},
	StatusRescheduled: {
		ActionComplete:   StatusCompleted,
		ActionCancel:     StatusCancelled,
		ActionReschedule: StatusRescheduled,
	},
}

var actionOrder = []Action{ActionComplete, ActionReschedule, ActionCancel}

// Next returns the status reached by applying a to s.
func (s Status) Next(a Action) (Status, error) {
	next, ok := transitions[s][a]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a %s appointment", response.ErrInvalidTransition, a, s)
	}
	return next, nil
}

func (s Status) Can(a Action) bool {
	_, ok := transitions[s][a]
	return ok
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// AllowedActions lists the actions offered for an appointment in status s.
func AllowedActions(s Status) []Action {
	var out []Action
	for _, a := range actionOrder {
		if s.Can(a) {
			out = append(out, a)
		}
	}
	return out
}

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// PreviousSlot is one entry of the reschedule history.
type PreviousSlot struct {
	Date       string    `json:"date"`
	BookedTime TimeRange `json:"bookedTime"`
}

type Reschedule struct {
	IsRescheduled bool           `json:"isRescheduled"`
	PreviousDates []PreviousSlot `json:"previousDates"`
}

type Appointment struct {
	ID         string          `json:"_id" db:"id"`
	Owner      string          `json:"owner" db:"owner"`
	Type       AppointmentType `json:"type" db:"type"`
	Date       string          `json:"date" db:"date"`
	BookedTime TimeRange       `json:"bookedTime"`
	Customer   Customer        `json:"customer"`
	CallReason string          `json:"callReason,omitempty" db:"call_reason"`
	PropertyID string          `json:"propertyId,omitempty" db:"property_id"`
	Status     Status          `json:"status" db:"status"`
	Reschedule *Reschedule     `json:"reschedule,omitempty" db:"reschedule"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`
}

// Rescheduled returns a copy of a moved to date/bookedTime, with the current
// slot appended to the history. a itself is left untouched.
func (a Appointment) Rescheduled(date string, bookedTime TimeRange) (Appointment, error) {
	next, err := a.Status.Next(ActionReschedule)
	if err != nil {
		return Appointment{}, err
	}

	history := Reschedule{IsRescheduled: true}
	if a.Reschedule != nil {
		history.PreviousDates = append(history.PreviousDates, a.Reschedule.PreviousDates...)
	}
	history.PreviousDates = append(history.PreviousDates, PreviousSlot{
		Date:       a.Date,
		BookedTime: a.BookedTime,
	})

	out := a
	out.Date = date
	out.BookedTime = bookedTime
	out.Status = next
	out.Reschedule = &history
	return out, nil
}

// WithStatus returns a copy of a after applying action.
func (a Appointment) WithStatus(action Action) (Appointment, error) {
	if action == ActionReschedule {
		return Appointment{}, fmt.Errorf("%w: reschedule needs a new slot", response.ErrInvalidTransition)
	}
	next, err := a.Status.Next(action)
	if err != nil {
		return Appointment{}, err
	}
	out := a
	out.Status = next
	return out, nil
}

// Blocking reports whether the appointment still occupies its slot.
func (a Appointment) Blocking() bool {
	return a.Status != StatusCancelled
}
