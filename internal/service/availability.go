package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate-booking/internal/models"
	"estate-booking/internal/slots"
	"estate-booking/pkg/response"
)

// AvailabilityWindow generates the bookable dates for an appointment type,
// starting today in the configured zone. agent may be empty, in which case
// the default agent is used. Nothing is cached or reserved.
func (s *Service) AvailabilityWindow(ctx context.Context, appointmentType models.AppointmentType, agent string) (*models.AvailabilityWindow, error) {
	const op = "service.AvailabilityWindow"

	duration, err := appointmentType.Duration()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	owner := s.resolveOwner(agent)

	hours, err := s.existingOpeningHours(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	start := s.today()
	end := start.AddDate(0, 0, s.settings.WindowDays-1)

	blocking, err := s.store.ListBlocking(ctx, owner, start.Format(models.DateLayout), end.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("%s: list bookings: %w", op, err)
	}

	dates := slots.Generate(slots.Request{
		Hours:    *hours,
		Start:    start,
		Days:     s.settings.WindowDays,
		Duration: duration,
		Booked:   bookedByDate(blocking, ""),
		Now:      s.now().In(s.settings.Location),
	})

	return &models.AvailabilityWindow{
		Type:  appointmentType,
		Owner: owner,
		Dates: dates,
	}, nil
}

// slotIsFree reports whether [from, from+d) on date can still be booked for
// owner. exclude names an appointment whose own slot does not count as busy.
func (s *Service) slotIsFree(ctx context.Context, owner, date, from string, d time.Duration, exclude string) error {
	day, err := models.ParseDate(date, s.settings.Location)
	if err != nil {
		return err
	}
	if day.Before(s.today()) {
		return response.NewValidationError("date", fmt.Sprintf("%s is in the past", date))
	}

	hours, err := s.existingOpeningHours(ctx, owner)
	if err != nil {
		return err
	}

	blocking, err := s.store.ListBlocking(ctx, owner, date, date)
	if err != nil {
		return fmt.Errorf("list bookings: %w", err)
	}

	open := slots.ForDate(*hours, day, d, bookedByDate(blocking, exclude)[date], s.now().In(s.settings.Location))
	if !slots.Contains(open, from) {
		return fmt.Errorf("%s %s: %w", date, from, response.ErrSlotNotAvailable)
	}

	return nil
}

// existingOpeningHours reads opening hours without creating them; an agent
// that never configured any has no slots.
func (s *Service) existingOpeningHours(ctx context.Context, owner string) (*models.OpeningHours, error) {
	hours, err := s.store.GetOpeningHours(ctx, owner)
	if errors.Is(err, response.ErrNotFound) {
		return &models.OpeningHours{Owner: owner, Availability: models.AvailabilityAvailable}, nil
	}
	if err != nil {
		return nil, err
	}
	return hours, nil
}

func bookedByDate(appointments []models.Appointment, exclude string) map[string][]models.TimeRange {
	out := make(map[string][]models.TimeRange)
	for _, a := range appointments {
		if a.ID == exclude || !a.Blocking() {
			continue
		}
		out[a.Date] = append(out[a.Date], a.BookedTime)
	}
	return out
}
