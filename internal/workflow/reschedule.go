package workflow

import (
	"context"
	"fmt"
	"sync"

	"estate-booking/api"
	"estate-booking/internal/carousel"
	"estate-booking/internal/models"
	"estate-booking/pkg/response"
)

type RescheduleBackend interface {
	AvailabilityWindow(ctx context.Context, appointmentType models.AppointmentType, agent string) (*models.AvailabilityWindow, error)
	Reschedule(ctx context.Context, id string, req api.RescheduleRequest) (*api.AppointmentResponse, error)
}

// Reschedule is one reschedule session. It is opened on an appointment,
// offers a freshly fetched window and submits the chosen slot once.
type Reschedule struct {
	status

	backend RescheduleBackend

	sessionMu   sync.Mutex
	appointment *api.AppointmentResponse
	carousel    *carousel.Carousel
}

func NewReschedule(backend RescheduleBackend) *Reschedule {
	return &Reschedule{backend: backend}
}

// Open starts a session for appointment. The window is always fetched again
// for the appointment's type and owner.
func (w *Reschedule) Open(ctx context.Context, appointment api.AppointmentResponse) error {
	const op = "workflow.Reschedule.Open"

	if !appointment.Status.Can(models.ActionReschedule) {
		err := fmt.Errorf("%s: %w", op, response.ErrInvalidTransition)
		w.setMessage(messageFor(err, "rescheduled"))
		return err
	}
	if !w.begin() {
		return ErrBusy
	}

	window, err := w.backend.AvailabilityWindow(ctx, appointment.Type, appointment.Owner)
	if err != nil {
		w.end("Could not load availability. Please try again.")
		return fmt.Errorf("%s: %w", op, err)
	}

	w.sessionMu.Lock()
	w.appointment = &appointment
	w.carousel = carousel.New(window.Dates)
	w.sessionMu.Unlock()

	w.end("")
	return nil
}

func (w *Reschedule) IsOpen() bool {
	w.sessionMu.Lock()
	defer w.sessionMu.Unlock()

	return w.carousel != nil
}

// Carousel is the picker of the open session, nil when closed.
func (w *Reschedule) Carousel() *carousel.Carousel {
	w.sessionMu.Lock()
	defer w.sessionMu.Unlock()

	return w.carousel
}

func (w *Reschedule) Close() {
	w.sessionMu.Lock()
	defer w.sessionMu.Unlock()

	w.appointment = nil
	w.carousel = nil
}

// Continue submits the selected slot. A missing date or slot is rejected
// before anything is sent. Any server failure closes the session; it has to
// be opened again to see current availability.
func (w *Reschedule) Continue(ctx context.Context) (*api.AppointmentResponse, error) {
	const op = "workflow.Reschedule.Continue"

	w.sessionMu.Lock()
	appointment, picker := w.appointment, w.carousel
	w.sessionMu.Unlock()

	if picker == nil {
		return nil, ErrNotOpen
	}

	date, from := picker.Selection()
	switch {
	case date == "":
		err := response.NewValidationError("date", "Choose a date.")
		w.setMessage(err.Reason)
		return nil, fmt.Errorf("%s: %w", op, err)
	case from == "":
		err := response.NewValidationError("from", "Choose a time slot.")
		w.setMessage(err.Reason)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	duration, err := appointment.Type.Duration()
	if err != nil {
		w.setMessage(messageFor(err, "rescheduled"))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	bookedTime, err := models.RangeFrom(from, duration)
	if err != nil {
		w.setMessage(messageFor(err, "rescheduled"))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !w.begin() {
		return nil, ErrBusy
	}

	updated, err := w.backend.Reschedule(ctx, appointment.ID, api.RescheduleRequest{
		Date: date,
		From: bookedTime.From,
		To:   bookedTime.To,
	})
	w.Close()
	if err != nil {
		w.end(messageFor(err, "rescheduled"))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	w.end("")
	return updated, nil
}
