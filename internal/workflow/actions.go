package workflow

import (
	"context"
	"fmt"
	"sync"

	"estate-booking/api"
	"estate-booking/internal/models"
	"estate-booking/pkg/response"
)

type StatusBackend interface {
	Complete(ctx context.Context, id string) (*api.AppointmentResponse, error)
	Cancel(ctx context.Context, id string) (*api.AppointmentResponse, error)
}

// Actions runs the status changes offered on an appointment. Cancelling is a
// two step gate: RequestCancel arms it, Confirm sends it.
type Actions struct {
	status

	backend StatusBackend

	gateMu  sync.Mutex
	pending string
}

func NewActions(backend StatusBackend) *Actions {
	return &Actions{backend: backend}
}

func (a *Actions) Complete(ctx context.Context, appointment api.AppointmentResponse) (*api.AppointmentResponse, error) {
	const op = "workflow.Actions.Complete"

	if !appointment.Status.Can(models.ActionComplete) {
		err := fmt.Errorf("%s: %w", op, response.ErrInvalidTransition)
		a.setMessage(messageFor(err, "completed"))
		return nil, err
	}
	if !a.begin() {
		return nil, ErrBusy
	}

	updated, err := a.backend.Complete(ctx, appointment.ID)
	if err != nil {
		a.end(messageFor(err, "completed"))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.end("")
	return updated, nil
}

// RequestCancel arms the cancel gate for appointment.
func (a *Actions) RequestCancel(appointment api.AppointmentResponse) error {
	const op = "workflow.Actions.RequestCancel"

	if !appointment.Status.Can(models.ActionCancel) {
		err := fmt.Errorf("%s: %w", op, response.ErrInvalidTransition)
		a.setMessage(messageFor(err, "cancelled"))
		return err
	}

	a.gateMu.Lock()
	a.pending = appointment.ID
	a.gateMu.Unlock()
	return nil
}

// Pending is the id awaiting confirmation, empty when the gate is not armed.
func (a *Actions) Pending() string {
	a.gateMu.Lock()
	defer a.gateMu.Unlock()

	return a.pending
}

func (a *Actions) Dismiss() {
	a.gateMu.Lock()
	defer a.gateMu.Unlock()

	a.pending = ""
}

// Confirm cancels the appointment armed by RequestCancel. The gate is
// disarmed whatever the outcome.
func (a *Actions) Confirm(ctx context.Context) (*api.AppointmentResponse, error) {
	const op = "workflow.Actions.Confirm"

	a.gateMu.Lock()
	id := a.pending
	a.gateMu.Unlock()

	if id == "" {
		return nil, ErrNotPending
	}
	if !a.begin() {
		return nil, ErrBusy
	}

	updated, err := a.backend.Cancel(ctx, id)
	a.Dismiss()
	if err != nil {
		a.end(messageFor(err, "cancelled"))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.end("")
	return updated, nil
}
