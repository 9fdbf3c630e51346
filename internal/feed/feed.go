// Package feed keeps the admin's appointment list: an initial page, "load
// more" pages appended at the tail, and in-place updates after actions.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"estate-booking/api"
	"estate-booking/internal/models"
)

// ErrStale is returned when a newer load superseded the request; its page
// was dropped.
var ErrStale = errors.New("feed: response superseded by a newer request")

type Fetcher interface {
	Appointments(ctx context.Context, q api.FeedQuery) (*api.FeedPage, error)
}

type Feed struct {
	fetcher Fetcher
	status  *models.Status
	limit   int

	mu      sync.Mutex
	items   []api.AppointmentResponse
	ids     map[string]int
	hasMore bool
	lastAt  *time.Time
	lastID  string
	token   uint64
	message string
}

// New creates an empty feed. status, when set, filters every page.
func New(fetcher Fetcher, status *models.Status, limit int) *Feed {
	return &Feed{
		fetcher: fetcher,
		status:  status,
		limit:   limit,
		ids:     make(map[string]int),
	}
}

// LoadInitial replaces the list with the first page.
func (f *Feed) LoadInitial(ctx context.Context) error {
	const op = "feed.LoadInitial"

	f.mu.Lock()
	f.token++
	token := f.token
	q := api.FeedQuery{Status: f.status, Limit: f.limit}
	f.mu.Unlock()

	page, err := f.fetcher.Appointments(ctx, q)

	f.mu.Lock()
	defer f.mu.Unlock()

	if token != f.token {
		return ErrStale
	}
	if err != nil {
		f.message = "Could not load appointments."
		return fmt.Errorf("%s: %w", op, err)
	}

	f.items = nil
	f.ids = make(map[string]int)
	f.appendLocked(page)
	f.message = ""
	return nil
}

// LoadMore appends the page after the current tail. It does nothing once
// the last page was loaded.
func (f *Feed) LoadMore(ctx context.Context) error {
	const op = "feed.LoadMore"

	f.mu.Lock()
	if !f.hasMore {
		f.mu.Unlock()
		return nil
	}
	f.token++
	token := f.token
	q := api.FeedQuery{LastCreatedAt: f.lastAt, LastID: f.lastID, Status: f.status, Limit: f.limit}
	f.mu.Unlock()

	page, err := f.fetcher.Appointments(ctx, q)

	f.mu.Lock()
	defer f.mu.Unlock()

	if token != f.token {
		return ErrStale
	}
	if err != nil {
		f.message = "Could not load more appointments."
		return fmt.Errorf("%s: %w", op, err)
	}

	f.appendLocked(page)
	f.message = ""
	return nil
}

func (f *Feed) appendLocked(page *api.FeedPage) {
	for _, a := range page.Appointments {
		if _, seen := f.ids[a.ID]; seen {
			continue
		}
		f.ids[a.ID] = len(f.items)
		f.items = append(f.items, a)
	}

	f.hasMore = page.HasMore
	if page.LastCreatedAt != nil {
		at := *page.LastCreatedAt
		f.lastAt = &at
		f.lastID = page.LastID
	}
}

// Apply replaces a loaded appointment with its updated version. Under a
// status filter an appointment that no longer matches is dropped.
func (f *Feed) Apply(updated api.AppointmentResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i, ok := f.ids[updated.ID]
	if !ok {
		return
	}

	if f.status != nil && updated.Status != *f.status {
		f.items = append(f.items[:i], f.items[i+1:]...)
		f.ids = make(map[string]int, len(f.items))
		for j, a := range f.items {
			f.ids[a.ID] = j
		}
		return
	}

	f.items[i] = updated
}

func (f *Feed) Items() []api.AppointmentResponse {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]api.AppointmentResponse(nil), f.items...)
}

func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.hasMore
}

func (f *Feed) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.message
}
