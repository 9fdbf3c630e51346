package service

import (
	"context"
	"fmt"
	"strings"

	"estate-booking/api"
	"estate-booking/internal/lock"
	"estate-booking/internal/models"
	"estate-booking/pkg/response"
)

// RescheduleAppointment moves an appointment to a new slot. The slot is
// checked against the owner's current calendar, never against a window the
// caller fetched earlier. On success the previous slot is appended to the
// history and the status becomes rescheduled; on failure nothing changes.
func (s *Service) RescheduleAppointment(ctx context.Context, owner, id string, req *api.RescheduleRequest) (*api.AppointmentResponse, error) {
	const op = "service.RescheduleAppointment"

	if strings.TrimSpace(req.Date) == "" {
		return nil, fmt.Errorf("%s: %w", op, response.NewValidationError("date", "choose a date"))
	}
	if strings.TrimSpace(req.From) == "" {
		return nil, fmt.Errorf("%s: %w", op, response.NewValidationError("from", "choose a time slot"))
	}
	if _, err := models.ParseDate(req.Date, s.settings.Location); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	current, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ownedBy(op, current, owner); err != nil {
		return nil, err
	}

	err = s.withLock(ctx, lock.OwnerKey(current.Owner), func() error {
		// Re-read under the lock; the first read only located the owner.
		prev, err := s.store.GetAppointment(ctx, id)
		if err != nil {
			return err
		}
		if !prev.Status.Can(models.ActionReschedule) {
			return fmt.Errorf("%w: cannot reschedule a %s appointment", response.ErrInvalidTransition, prev.Status)
		}

		duration, err := prev.Type.Duration()
		if err != nil {
			return err
		}
		bookedTime, err := models.RangeFrom(req.From, duration)
		if err != nil {
			return err
		}
		if req.To != "" {
			to, err := models.ParseClock(req.To)
			if err != nil {
				return err
			}
			if models.FormatClock(to) != bookedTime.To {
				return response.NewValidationError("to", fmt.Sprintf("expected %s for a %s appointment", bookedTime.To, prev.Type))
			}
		}
		if req.Date == prev.Date && bookedTime == prev.BookedTime {
			return response.NewValidationError("from", "the appointment is already booked at this time")
		}

		if err := s.slotIsFree(ctx, prev.Owner, req.Date, bookedTime.From, duration, prev.ID); err != nil {
			return err
		}

		next, err := prev.Rescheduled(req.Date, bookedTime)
		if err != nil {
			return err
		}
		next.UpdatedAt = s.now().UTC()

		return s.store.RescheduleAppointment(ctx, prev, &next)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAppointment(ctx, owner, id)
}
