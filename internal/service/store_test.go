package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"estate-booking/api"
	"estate-booking/internal/lock"
	"estate-booking/internal/models"
	"estate-booking/pkg/response"
)

// memStore mirrors the postgres storage semantics closely enough for the
// service tests: commit-time overlap checks, conditional status updates and
// (createdAt, id) keyset paging.
type memStore struct {
	mu           sync.Mutex
	hours        map[string]models.OpeningHours
	appointments map[string]models.Appointment
	listErr      error
}

func newMemStore() *memStore {
	return &memStore{
		hours:        make(map[string]models.OpeningHours),
		appointments: make(map[string]models.Appointment),
	}
}

func copyHours(h models.OpeningHours) models.OpeningHours {
	for d := time.Sunday; d <= time.Saturday; d++ {
		h.SetRanges(d, append([]models.TimeRange(nil), h.Ranges(d)...))
	}
	return h
}

func copyAppointment(a models.Appointment) models.Appointment {
	if a.Reschedule != nil {
		r := *a.Reschedule
		r.PreviousDates = append([]models.PreviousSlot(nil), r.PreviousDates...)
		a.Reschedule = &r
	}
	return a
}

func (m *memStore) GetOpeningHours(ctx context.Context, owner string) (*models.OpeningHours, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hours[owner]
	if !ok {
		return nil, response.ErrNotFound
	}
	out := copyHours(h)
	return &out, nil
}

func (m *memStore) CreateOpeningHours(ctx context.Context, hours *models.OpeningHours) (*models.OpeningHours, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.hours[hours.Owner]; ok {
		out := copyHours(existing)
		return &out, nil
	}
	m.hours[hours.Owner] = copyHours(*hours)
	out := copyHours(*hours)
	return &out, nil
}

func (m *memStore) SaveOpeningHours(ctx context.Context, hours *models.OpeningHours) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hours[hours.Owner] = copyHours(*hours)
	return nil
}

func (m *memStore) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	out := copyAppointment(a)
	return &out, nil
}

func (m *memStore) ListBlocking(ctx context.Context, owner string, fromDate, toDate string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	var out []models.Appointment
	for _, a := range m.appointments {
		if a.Owner == owner && a.Blocking() && a.Date >= fromDate && a.Date <= toDate {
			out = append(out, copyAppointment(a))
		}
	}
	return out, nil
}

func (m *memStore) overlapsLocked(candidate models.Appointment) bool {
	for _, a := range m.appointments {
		if a.ID == candidate.ID || a.Owner != candidate.Owner || a.Date != candidate.Date || !a.Blocking() {
			continue
		}
		if a.BookedTime.Overlaps(candidate.BookedTime) {
			return true
		}
	}
	return false
}

func (m *memStore) CreateAppointment(ctx context.Context, appointment *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.overlapsLocked(*appointment) {
		return response.ErrSlotNotAvailable
	}
	m.appointments[appointment.ID] = copyAppointment(*appointment)
	return nil
}

func (m *memStore) RescheduleAppointment(ctx context.Context, prev, next *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.appointments[prev.ID]
	if !ok {
		return response.ErrNotFound
	}
	if current.Status != prev.Status || current.Date != prev.Date || current.BookedTime != prev.BookedTime {
		return fmt.Errorf("appointment changed concurrently: %w", response.ErrConflict)
	}
	if m.overlapsLocked(*next) {
		return response.ErrSlotNotAvailable
	}
	m.appointments[next.ID] = copyAppointment(*next)
	return nil
}

func (m *memStore) UpdateAppointmentStatus(ctx context.Context, id string, from, to models.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok {
		return response.ErrNotFound
	}
	if a.Status != from {
		return response.ErrInvalidTransition
	}
	a.Status = to
	m.appointments[id] = a
	return nil
}

func (m *memStore) ListAppointments(ctx context.Context, owner string, q api.FeedQuery) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []models.Appointment
	for _, a := range m.appointments {
		if a.Owner != owner {
			continue
		}
		if q.Status != nil && a.Status != *q.Status {
			continue
		}
		if q.LastCreatedAt != nil {
			last := *q.LastCreatedAt
			switch {
			case a.CreatedAt.Before(last):
			case a.CreatedAt.Equal(last) && q.LastID != "" && a.ID < q.LastID:
			default:
				continue
			}
		}
		rows = append(rows, copyAppointment(a))
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
	log  []string
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]bool)}
}

func (l *memLocker) Lock(ctx context.Context, key string, ttl time.Duration) (lock.ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] {
		return nil, fmt.Errorf("%s: %w", key, response.ErrLocked)
	}
	l.held[key] = true
	l.log = append(l.log, key)

	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, nil
}

// hold marks key as taken by someone else.
func (l *memLocker) hold(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[key] = true
}
