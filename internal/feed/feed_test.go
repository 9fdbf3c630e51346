package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"estate-booking/api"
	"estate-booking/internal/models"
)

// pagedFetcher serves a fixed dataset with (createdAt, id) keyset paging.
type pagedFetcher struct {
	rows    []models.Appointment
	queries []api.FeedQuery
}

func newPagedFetcher(n int) *pagedFetcher {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &pagedFetcher{}
	for i := 0; i < n; i++ {
		status := models.StatusUpcoming
		if i%4 == 0 {
			status = models.StatusCompleted
		}
		f.rows = append(f.rows, models.Appointment{
			ID:        fmt.Sprintf("a-%02d", i),
			Status:    status,
			CreatedAt: base.Add(time.Duration(i/3) * time.Minute),
		})
	}
	sort.Slice(f.rows, func(i, j int) bool {
		if !f.rows[i].CreatedAt.Equal(f.rows[j].CreatedAt) {
			return f.rows[i].CreatedAt.After(f.rows[j].CreatedAt)
		}
		return f.rows[i].ID > f.rows[j].ID
	})
	return f
}

func (p *pagedFetcher) Appointments(ctx context.Context, q api.FeedQuery) (*api.FeedPage, error) {
	p.queries = append(p.queries, q)

	var matched []models.Appointment
	for _, a := range p.rows {
		if q.Status != nil && a.Status != *q.Status {
			continue
		}
		if q.LastCreatedAt != nil {
			if a.CreatedAt.After(*q.LastCreatedAt) {
				continue
			}
			if a.CreatedAt.Equal(*q.LastCreatedAt) && a.ID >= q.LastID {
				continue
			}
		}
		matched = append(matched, a)
	}

	page := &api.FeedPage{Appointments: []api.AppointmentResponse{}}
	if len(matched) > q.Limit {
		matched = matched[:q.Limit]
		page.HasMore = true
	}
	for _, a := range matched {
		page.Appointments = append(page.Appointments, api.NewAppointmentResponse(a))
	}
	if n := len(matched); n > 0 {
		at := matched[n-1].CreatedAt
		page.LastCreatedAt = &at
		page.LastID = matched[n-1].ID
	}
	return page, nil
}

func TestLoadMoreCoversEverything(t *testing.T) {
	t.Parallel()

	fetcher := newPagedFetcher(17)
	f := New(fetcher, nil, 4)
	ctx := context.Background()

	if err := f.LoadInitial(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for f.HasMore() {
		if err := f.LoadMore(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	items := f.Items()
	if len(items) != len(fetcher.rows) {
		t.Fatalf("expected %d items, got %d", len(fetcher.rows), len(items))
	}
	for i, a := range items {
		if a.ID != fetcher.rows[i].ID {
			t.Fatalf("item %d: expected %s, got %s", i, fetcher.rows[i].ID, a.ID)
		}
	}

	// Every load after the first continues from the previous page's tail.
	for i := 1; i < len(fetcher.queries); i++ {
		q := fetcher.queries[i]
		if q.LastCreatedAt == nil || q.LastID != items[4*i-1].ID {
			t.Fatalf("load %d used cursor %v/%q, expected tail %s", i, q.LastCreatedAt, q.LastID, items[4*i-1].ID)
		}
	}

	if err := f.LoadMore(ctx); err != nil {
		t.Fatalf("load more after the end must be a no-op, got %v", err)
	}
	if len(fetcher.queries) != 5 {
		t.Fatalf("expected 5 requests, got %d", len(fetcher.queries))
	}
}

func TestStatusFilterAndApply(t *testing.T) {
	t.Parallel()

	fetcher := newPagedFetcher(12)
	upcoming := models.StatusUpcoming
	f := New(fetcher, &upcoming, 20)

	if err := f.LoadInitial(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := f.Items()
	if len(items) != 9 {
		t.Fatalf("expected 9 upcoming appointments, got %d", len(items))
	}

	moved := items[2]
	moved.Status = models.StatusRescheduled
	moved.Date = "2025-01-12"
	f.Apply(moved)

	after := f.Items()
	if len(after) != 8 {
		t.Fatalf("appointments leaving the filter must be dropped, got %d", len(after))
	}
	for _, a := range after {
		if a.ID == moved.ID {
			t.Fatalf("%s should have been dropped", moved.ID)
		}
	}

	all := New(fetcher, nil, 20)
	if err := all.LoadInitial(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all.Apply(moved)
	for _, a := range all.Items() {
		if a.ID == moved.ID && (a.Status != models.StatusRescheduled || a.Date != "2025-01-12") {
			t.Fatalf("update not applied in place: %+v", a)
		}
	}

	all.Apply(api.AppointmentResponse{Appointment: models.Appointment{ID: "unknown"}})
	if len(all.Items()) != 12 {
		t.Fatalf("unknown appointments must be ignored")
	}
}

// scriptedFetcher hands every call to the test, which answers it on the
// call's own reply channel.
type scriptedFetcher struct {
	calls chan scriptedCall
}

type scriptedCall struct {
	q     api.FeedQuery
	reply chan *api.FeedPage
}

func (s *scriptedFetcher) Appointments(ctx context.Context, q api.FeedQuery) (*api.FeedPage, error) {
	call := scriptedCall{q: q, reply: make(chan *api.FeedPage)}
	s.calls <- call
	return <-call.reply, nil
}

func page(hasMore bool, ids ...string) *api.FeedPage {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &api.FeedPage{HasMore: hasMore, LastCreatedAt: &at}
	for _, id := range ids {
		p.Appointments = append(p.Appointments, api.AppointmentResponse{Appointment: models.Appointment{ID: id, CreatedAt: at}})
		p.LastID = id
	}
	return p
}

func TestStaleResponsesAreDiscarded(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{calls: make(chan scriptedCall)}
	f := New(fetcher, nil, 2)
	ctx := context.Background()

	go func() {
		call := <-fetcher.calls
		call.reply <- page(true, "a-9", "a-8")
	}()
	if err := f.LoadInitial(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	slow := make(chan error, 1)
	go func() { slow <- f.LoadMore(ctx) }()
	slowCall := <-fetcher.calls
	if slowCall.q.LastID != "a-8" {
		t.Fatalf("load more must start at the tail, got %q", slowCall.q.LastID)
	}

	fresh := make(chan error, 1)
	go func() { fresh <- f.LoadInitial(ctx) }()
	freshCall := <-fetcher.calls

	freshCall.reply <- page(false, "a-9", "a-7")
	if err := <-fresh; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slowCall.reply <- page(true, "a-6", "a-5")
	if err := <-slow; !errors.Is(err, ErrStale) {
		t.Fatalf("expected the superseded load to be discarded, got %v", err)
	}

	items := f.Items()
	if len(items) != 2 || items[0].ID != "a-9" || items[1].ID != "a-7" || f.HasMore() {
		t.Fatalf("stale page leaked into the feed: %+v", items)
	}
}

func TestDuplicatesAreSkipped(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{calls: make(chan scriptedCall)}
	go func() {
		(<-fetcher.calls).reply <- page(true, "a-9", "a-8")
		(<-fetcher.calls).reply <- page(false, "a-8", "a-7")
	}()

	f := New(fetcher, nil, 2)
	ctx := context.Background()
	if err := f.LoadInitial(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.LoadMore(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := f.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 unique items, got %d", len(items))
	}
}

type failingFetcher struct{}

func (failingFetcher) Appointments(ctx context.Context, q api.FeedQuery) (*api.FeedPage, error) {
	return nil, errors.New("offline")
}

func TestLoadFailureSetsMessage(t *testing.T) {
	t.Parallel()

	f := New(failingFetcher{}, nil, 5)
	if err := f.LoadInitial(context.Background()); err == nil {
		t.Fatalf("expected an error")
	}
	if f.Message() == "" {
		t.Fatalf("failures must leave a message")
	}
}
