package service

import (
	"context"
	"fmt"
	"time"

	"estate-booking/api"
	"estate-booking/internal/lock"
	"estate-booking/internal/models"
	"estate-booking/pkg/response"

	"github.com/google/uuid"
)

type Service struct {
	store    Store
	locker   lock.Locker
	settings Settings
	now      func() time.Time
	newID    func() string
}

type Settings struct {
	Location     *time.Location
	WindowDays   int
	DefaultAgent string
	PageSize     int
	LockTTL      time.Duration
}

const maxPageSize = 100

func NewService(store Store, locker lock.Locker, settings Settings) *Service {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.WindowDays <= 0 {
		settings.WindowDays = 11
	}
	if settings.PageSize <= 0 {
		settings.PageSize = 10
	}
	if settings.LockTTL <= 0 {
		settings.LockTTL = 10 * time.Second
	}

	return &Service{
		store:    store,
		locker:   locker,
		settings: settings,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithIDs replaces the id generator.
func (s *Service) WithIDs(newID func() string) *Service {
	s.newID = newID
	return s
}

// Store persists opening hours and appointments. Methods that change an
// appointment's slot run in one transaction and re-check the owner's
// calendar for overlaps before committing.
type Store interface {
	// Opening hours
	GetOpeningHours(ctx context.Context, owner string) (*models.OpeningHours, error)
	CreateOpeningHours(ctx context.Context, hours *models.OpeningHours) (*models.OpeningHours, error)
	SaveOpeningHours(ctx context.Context, hours *models.OpeningHours) error

	// Appointments
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	ListBlocking(ctx context.Context, owner string, fromDate, toDate string) ([]models.Appointment, error)
	CreateAppointment(ctx context.Context, appointment *models.Appointment) error
	RescheduleAppointment(ctx context.Context, prev, next *models.Appointment) error
	UpdateAppointmentStatus(ctx context.Context, id string, from, to models.Status) error
	ListAppointments(ctx context.Context, owner string, q api.FeedQuery) ([]models.Appointment, error)
}

// withLock runs fn while holding key.
func (s *Service) withLock(ctx context.Context, key string, fn func() error) error {
	release, err := s.locker.Lock(ctx, key, s.settings.LockTTL)
	if err != nil {
		return err
	}
	defer func() {
		_ = release(context.WithoutCancel(ctx))
	}()

	return fn()
}

func (s *Service) today() time.Time {
	now := s.now().In(s.settings.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.settings.Location)
}

func (s *Service) resolveOwner(agent string) string {
	if agent != "" {
		return agent
	}
	return s.settings.DefaultAgent
}

func (s *Service) appointmentResponse(a *models.Appointment) *api.AppointmentResponse {
	resp := api.NewAppointmentResponse(*a)
	return &resp
}

func ownedBy(op string, a *models.Appointment, owner string) error {
	if owner != "" && a.Owner != owner {
		return fmt.Errorf("%s: appointment %s: %w", op, a.ID, response.ErrNotFound)
	}
	return nil
}
