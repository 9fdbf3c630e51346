package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"estate-booking/api"
	"estate-booking/internal/lock"
	"estate-booking/internal/models"
	"estate-booking/pkg/response"
)

// BookAppointment creates an upcoming appointment on a slot that is still
// free at commit time. owner is the acting agent for admin bookings; public
// bookings pass req.Agent, falling back to the default agent.
func (s *Service) BookAppointment(ctx context.Context, owner string, req *api.BookingRequest) (*api.AppointmentResponse, error) {
	const op = "service.BookAppointment"

	if err := validateBooking(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	duration, err := req.Type.Duration()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	bookedTime, err := models.RangeFrom(req.From, duration)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := models.ParseDate(req.Date, s.settings.Location); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if owner == "" {
		owner = s.resolveOwner(req.Agent)
	}

	now := s.now().UTC()
	appointment := &models.Appointment{
		ID:         s.newID(),
		Owner:      owner,
		Type:       req.Type,
		Date:       req.Date,
		BookedTime: bookedTime,
		Customer:   trimCustomer(req.Customer),
		Status:     models.StatusUpcoming,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	switch req.Type {
	case models.TypeCall:
		appointment.CallReason = strings.TrimSpace(req.CallReason)
	case models.TypeHouseTouring:
		appointment.PropertyID = strings.TrimSpace(req.PropertyID)
	}

	err = s.withLock(ctx, lock.OwnerKey(owner), func() error {
		if err := s.slotIsFree(ctx, owner, req.Date, bookedTime.From, duration, ""); err != nil {
			return err
		}
		return s.store.CreateAppointment(ctx, appointment)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAppointment(ctx, owner, appointment.ID)
}

// GetAppointment reads one appointment. A non-empty owner restricts the
// lookup to that agent's appointments.
func (s *Service) GetAppointment(ctx context.Context, owner, id string) (*api.AppointmentResponse, error) {
	const op = "service.GetAppointment"

	appointment, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ownedBy(op, appointment, owner); err != nil {
		return nil, err
	}

	return s.appointmentResponse(appointment), nil
}

func (s *Service) CompleteAppointment(ctx context.Context, owner, id string) (*api.AppointmentResponse, error) {
	const op = "service.CompleteAppointment"

	appointment, err := s.transition(ctx, owner, id, models.ActionComplete)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return appointment, nil
}

// CancelAppointment is the second step of the cancel gate: without an
// explicit confirmation nothing changes.
func (s *Service) CancelAppointment(ctx context.Context, owner, id string, confirmed bool) (*api.AppointmentResponse, error) {
	const op = "service.CancelAppointment"

	if !confirmed {
		return nil, fmt.Errorf("%s: %w", op, response.NewValidationError("confirm", "cancellation must be confirmed"))
	}

	appointment, err := s.transition(ctx, owner, id, models.ActionCancel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return appointment, nil
}

func (s *Service) transition(ctx context.Context, owner, id string, action models.Action) (*api.AppointmentResponse, error) {
	const op = "service.transition"

	lockOwner := owner
	if lockOwner == "" {
		appointment, err := s.store.GetAppointment(ctx, id)
		if err != nil {
			return nil, err
		}
		lockOwner = appointment.Owner
	}

	err := s.withLock(ctx, lock.OwnerKey(lockOwner), func() error {
		current, err := s.store.GetAppointment(ctx, id)
		if err != nil {
			return err
		}
		if err := ownedBy(op, current, owner); err != nil {
			return err
		}

		next, err := current.WithStatus(action)
		if err != nil {
			return err
		}
		return s.store.UpdateAppointmentStatus(ctx, id, current.Status, next.Status)
	})
	if err != nil {
		return nil, err
	}

	return s.GetAppointment(ctx, owner, id)
}

func validateBooking(req *api.BookingRequest) error {
	if !req.Type.Valid() {
		return response.NewValidationError("type", fmt.Sprintf("must be %q or %q", models.TypeCall, models.TypeHouseTouring))
	}
	if strings.TrimSpace(req.Date) == "" {
		return response.NewValidationError("date", "is required")
	}
	if strings.TrimSpace(req.From) == "" {
		return response.NewValidationError("from", "is required")
	}

	c := req.Customer
	switch {
	case strings.TrimSpace(c.FirstName) == "":
		return response.NewValidationError("customer.firstName", "is required")
	case strings.TrimSpace(c.LastName) == "":
		return response.NewValidationError("customer.lastName", "is required")
	case strings.TrimSpace(c.Phone) == "":
		return response.NewValidationError("customer.phone", "is required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(c.Email)); err != nil {
		return response.NewValidationError("customer.email", "is not a valid address")
	}

	if req.Type == models.TypeHouseTouring && strings.TrimSpace(req.PropertyID) == "" {
		return response.NewValidationError("propertyId", "is required for house touring")
	}

	return nil
}

func trimCustomer(c models.Customer) models.Customer {
	return models.Customer{
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Email:     strings.TrimSpace(c.Email),
		Phone:     strings.TrimSpace(c.Phone),
	}
}
