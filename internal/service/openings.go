package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"estate-booking/api"
	"estate-booking/internal/lock"
	"estate-booking/internal/models"
	"estate-booking/pkg/response"
)

// ReadOpeningHours returns the owner's opening hours, creating an empty,
// available set on first use.
func (s *Service) ReadOpeningHours(ctx context.Context, owner string) (*models.OpeningHours, error) {
	const op = "service.ReadOpeningHours"

	hours, err := s.openingHours(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return hours, nil
}

func (s *Service) AddOpeningRange(ctx context.Context, owner string, req *api.OpeningRangeRequest) (*models.OpeningHours, error) {
	const op = "service.AddOpeningRange"

	day, ok := models.ParseWeekday(req.Day)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.NewValidationError("day", fmt.Sprintf("unknown weekday %q", req.Day)))
	}

	added, err := canonicalRange(models.TimeRange{From: req.From, To: req.To})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hours, err := s.mutateOpeningHours(ctx, owner, func(hours *models.OpeningHours) error {
		ranges := hours.Ranges(day)
		if err := checkNoOverlap(ranges, added, nil); err != nil {
			return err
		}
		hours.SetRanges(day, sortedRanges(append(append([]models.TimeRange{}, ranges...), added)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return hours, nil
}

func (s *Service) UpdateOpeningRange(ctx context.Context, owner string, req *api.OpeningRangeUpdateRequest) (*models.OpeningHours, error) {
	const op = "service.UpdateOpeningRange"

	day, ok := models.ParseWeekday(req.Day)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.NewValidationError("day", fmt.Sprintf("unknown weekday %q", req.Day)))
	}

	old, err := canonicalRange(req.Old)
	if err != nil {
		return nil, fmt.Errorf("%s: old: %w", op, err)
	}
	replacement, err := canonicalRange(req.New)
	if err != nil {
		return nil, fmt.Errorf("%s: new: %w", op, err)
	}

	hours, err := s.mutateOpeningHours(ctx, owner, func(hours *models.OpeningHours) error {
		ranges := hours.Ranges(day)
		idx := indexOfRange(ranges, old)
		if idx < 0 {
			return fmt.Errorf("range %s on %s: %w", old, day, response.ErrNotFound)
		}
		if err := checkNoOverlap(ranges, replacement, &old); err != nil {
			return err
		}

		next := append([]models.TimeRange{}, ranges...)
		next[idx] = replacement
		hours.SetRanges(day, sortedRanges(next))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return hours, nil
}

func (s *Service) DeleteOpeningRange(ctx context.Context, owner string, req *api.OpeningRangeRequest) (*models.OpeningHours, error) {
	const op = "service.DeleteOpeningRange"

	day, ok := models.ParseWeekday(req.Day)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.NewValidationError("day", fmt.Sprintf("unknown weekday %q", req.Day)))
	}

	target, err := canonicalRange(models.TimeRange{From: req.From, To: req.To})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hours, err := s.mutateOpeningHours(ctx, owner, func(hours *models.OpeningHours) error {
		ranges := hours.Ranges(day)
		idx := indexOfRange(ranges, target)
		if idx < 0 {
			return fmt.Errorf("range %s on %s: %w", target, day, response.ErrNotFound)
		}

		next := make([]models.TimeRange, 0, len(ranges)-1)
		next = append(next, ranges[:idx]...)
		next = append(next, ranges[idx+1:]...)
		hours.SetRanges(day, next)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return hours, nil
}

func (s *Service) SetAvailability(ctx context.Context, owner string, req *api.AvailabilityToggleRequest) (*models.OpeningHours, error) {
	const op = "service.SetAvailability"

	if !req.Availability.Valid() {
		return nil, fmt.Errorf("%s: %w", op, response.NewValidationError("availability", fmt.Sprintf("must be %q or %q", models.AvailabilityAvailable, models.AvailabilityUnavailable)))
	}

	hours, err := s.mutateOpeningHours(ctx, owner, func(hours *models.OpeningHours) error {
		hours.Availability = req.Availability
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return hours, nil
}

func (s *Service) mutateOpeningHours(ctx context.Context, owner string, mutate func(hours *models.OpeningHours) error) (*models.OpeningHours, error) {
	var out *models.OpeningHours

	err := s.withLock(ctx, lock.OpeningsKey(owner), func() error {
		hours, err := s.openingHours(ctx, owner)
		if err != nil {
			return err
		}
		if err := mutate(hours); err != nil {
			return err
		}

		hours.UpdatedAt = s.now().UTC()
		if err := s.store.SaveOpeningHours(ctx, hours); err != nil {
			return err
		}
		out = hours
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Service) openingHours(ctx context.Context, owner string) (*models.OpeningHours, error) {
	if owner == "" {
		return nil, response.NewValidationError("owner", "is required")
	}

	hours, err := s.store.GetOpeningHours(ctx, owner)
	if err == nil {
		return hours, nil
	}
	if !errors.Is(err, response.ErrNotFound) {
		return nil, err
	}

	return s.store.CreateOpeningHours(ctx, &models.OpeningHours{
		ID:           s.newID(),
		Owner:        owner,
		Availability: models.AvailabilityAvailable,
		UpdatedAt:    s.now().UTC(),
	})
}

// canonicalRange validates r and rewrites it as zero-padded HH:mm.
func canonicalRange(r models.TimeRange) (models.TimeRange, error) {
	if err := r.Validate(); err != nil {
		return models.TimeRange{}, err
	}
	from, to, _ := r.Minutes()
	return models.TimeRange{From: models.FormatClock(from), To: models.FormatClock(to)}, nil
}

func checkNoOverlap(ranges []models.TimeRange, candidate models.TimeRange, ignore *models.TimeRange) error {
	for _, r := range ranges {
		if ignore != nil && sameRange(r, *ignore) {
			continue
		}
		if r.Overlaps(candidate) {
			return response.NewValidationError("range", fmt.Sprintf("%s overlaps existing range %s", candidate, r))
		}
	}
	return nil
}

func indexOfRange(ranges []models.TimeRange, target models.TimeRange) int {
	for i, r := range ranges {
		if sameRange(r, target) {
			return i
		}
	}
	return -1
}

func sameRange(a, b models.TimeRange) bool {
	af, at, err := a.Minutes()
	if err != nil {
		return false
	}
	bf, bt, err := b.Minutes()
	if err != nil {
		return false
	}
	return af == bf && at == bt
}

func sortedRanges(ranges []models.TimeRange) []models.TimeRange {
	sort.SliceStable(ranges, func(i, j int) bool {
		a, _ := models.ParseClock(ranges[i].From)
		b, _ := models.ParseClock(ranges[j].From)
		return a < b
	})
	return ranges
}

