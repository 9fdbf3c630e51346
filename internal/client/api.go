package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"estate-booking/api"
	"estate-booking/internal/models"
)

// Cache tags of the logical resources the UI reads.
const (
	TagOpenings     = "fetchOpenings"
	TagAvailability = "fetchAvailability"
	TagAppointments = "fetchAdminAppointments"
)

// API is the typed surface of the booking service.
type API struct {
	r Requester
}

func NewAPI(r Requester) *API {
	return &API{r: r}
}

type openingHoursBody struct {
	OpeningHours *models.OpeningHours `json:"openingHours"`
}

type availabilityBody struct {
	Availability *models.AvailabilityWindow `json:"availability"`
}

type appointmentBody struct {
	Appointment *api.AppointmentResponse `json:"appointment"`
}

func (a *API) OpeningHours(ctx context.Context) (*models.OpeningHours, error) {
	var out openingHoursBody
	if err := a.r.Request(ctx, "admin/openings", RequestOptions{Tag: TagOpenings}, &out); err != nil {
		return nil, err
	}
	return out.OpeningHours, nil
}

func (a *API) AddOpeningRange(ctx context.Context, req api.OpeningRangeRequest) (*models.OpeningHours, error) {
	return a.openingsMutation(ctx, http.MethodPost, "admin/openings/ranges", req)
}

func (a *API) UpdateOpeningRange(ctx context.Context, req api.OpeningRangeUpdateRequest) (*models.OpeningHours, error) {
	return a.openingsMutation(ctx, http.MethodPatch, "admin/openings/ranges", req)
}

func (a *API) DeleteOpeningRange(ctx context.Context, req api.OpeningRangeRequest) (*models.OpeningHours, error) {
	q := url.Values{}
	q.Set("day", req.Day)
	q.Set("from", req.From)
	q.Set("to", req.To)
	return a.openingsMutation(ctx, http.MethodDelete, "admin/openings/ranges?"+q.Encode(), nil)
}

func (a *API) SetAvailability(ctx context.Context, availability models.Availability) (*models.OpeningHours, error) {
	return a.openingsMutation(ctx, http.MethodPatch, "admin/openings/availability", api.AvailabilityToggleRequest{Availability: availability})
}

func (a *API) openingsMutation(ctx context.Context, method, path string, data any) (*models.OpeningHours, error) {
	var out openingHoursBody
	if err := a.r.Request(ctx, path, RequestOptions{Method: method, Data: data, Tag: TagOpenings}, &out); err != nil {
		return nil, err
	}
	return out.OpeningHours, nil
}

// AvailabilityWindow always asks the server; windows are never cached.
func (a *API) AvailabilityWindow(ctx context.Context, appointmentType models.AppointmentType, agent string) (*models.AvailabilityWindow, error) {
	q := url.Values{}
	q.Set("type", string(appointmentType))
	if agent != "" {
		q.Set("agent", agent)
	}

	var out availabilityBody
	if err := a.r.Request(ctx, "availability?"+q.Encode(), RequestOptions{Tag: TagAvailability}, &out); err != nil {
		return nil, err
	}
	return out.Availability, nil
}

func (a *API) Book(ctx context.Context, req api.BookingRequest) (*api.AppointmentResponse, error) {
	return a.appointmentCall(ctx, http.MethodPost, "admin/appointments", req)
}

func (a *API) Appointment(ctx context.Context, id string) (*api.AppointmentResponse, error) {
	return a.appointmentCall(ctx, http.MethodGet, "admin/appointments/"+url.PathEscape(id), nil)
}

func (a *API) Complete(ctx context.Context, id string) (*api.AppointmentResponse, error) {
	return a.appointmentCall(ctx, http.MethodPost, "admin/appointments/"+url.PathEscape(id)+"/complete", nil)
}

func (a *API) Cancel(ctx context.Context, id string) (*api.AppointmentResponse, error) {
	return a.appointmentCall(ctx, http.MethodPost, "admin/appointments/"+url.PathEscape(id)+"/cancel", api.CancelRequest{Confirm: true})
}

func (a *API) Reschedule(ctx context.Context, id string, req api.RescheduleRequest) (*api.AppointmentResponse, error) {
	return a.appointmentCall(ctx, http.MethodPost, "admin/appointments/"+url.PathEscape(id)+"/reschedule", req)
}

func (a *API) appointmentCall(ctx context.Context, method, path string, data any) (*api.AppointmentResponse, error) {
	var out appointmentBody
	if err := a.r.Request(ctx, path, RequestOptions{Method: method, Data: data, Tag: TagAppointments}, &out); err != nil {
		return nil, err
	}
	return out.Appointment, nil
}

// Appointments fetches one page of the feed.
func (a *API) Appointments(ctx context.Context, q api.FeedQuery) (*api.FeedPage, error) {
	values := url.Values{}
	if q.LastCreatedAt != nil {
		values.Set("lastCreatedAt", q.LastCreatedAt.UTC().Format(time.RFC3339Nano))
	}
	if q.LastID != "" {
		values.Set("lastId", q.LastID)
	}
	if q.Status != nil {
		values.Set("status", string(*q.Status))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "admin/appointment"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	var out api.FeedPage
	if err := a.r.Request(ctx, path, RequestOptions{Tag: TagAppointments}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
