package service

import (
	"context"
	"fmt"

	"estate-booking/api"
	"estate-booking/pkg/response"
)

// ListAppointments returns one page of the owner's appointments, newest
// first. Pages are keyed by the (createdAt, id) of the previous page's last
// item so that loading more never repeats or skips an appointment.
func (s *Service) ListAppointments(ctx context.Context, owner string, q api.FeedQuery) (*api.FeedPage, error) {
	const op = "service.ListAppointments"

	if owner == "" {
		return nil, fmt.Errorf("%s: %w", op, response.NewValidationError("owner", "is required"))
	}
	if q.Status != nil && !q.Status.Valid() {
		return nil, fmt.Errorf("%s: %w", op, response.NewValidationError("status", fmt.Sprintf("unknown status %q", *q.Status)))
	}
	if q.LastID != "" && q.LastCreatedAt == nil {
		return nil, fmt.Errorf("%s: %w", op, response.NewValidationError("lastId", "requires lastCreatedAt"))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = s.settings.PageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	// One extra row tells whether another page exists.
	q.Limit = limit + 1
	rows, err := s.store.ListAppointments(ctx, owner, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	page := &api.FeedPage{
		Appointments: make([]api.AppointmentResponse, 0, limit),
		HasMore:      len(rows) > limit,
	}
	if page.HasMore {
		rows = rows[:limit]
	}
	for _, a := range rows {
		page.Appointments = append(page.Appointments, api.NewAppointmentResponse(a))
	}
	if n := len(rows); n > 0 {
		tail := rows[n-1]
		createdAt := tail.CreatedAt
		page.LastCreatedAt = &createdAt
		page.LastID = tail.ID
	}

	return page, nil
}
