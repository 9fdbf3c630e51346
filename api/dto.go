package api

import (
	"time"

	"estate-booking/internal/models"
)

// Opening hours

type OpeningRangeRequest struct {
	Day  string `json:"day"`
	From string `json:"from"`
	To   string `json:"to"`
}

type OpeningRangeUpdateRequest struct {
	Day string           `json:"day"`
	Old models.TimeRange `json:"old"`
	New models.TimeRange `json:"new"`
}

type AvailabilityToggleRequest struct {
	Availability models.Availability `json:"availability"`
}

// Appointments

type BookingRequest struct {
	Type       models.AppointmentType `json:"type"`
	Date       string                 `json:"date"`
	From       string                 `json:"from"`
	Customer   models.Customer        `json:"customer"`
	CallReason string                 `json:"callReason,omitempty"`
	PropertyID string                 `json:"propertyId,omitempty"`
	Agent      string                 `json:"agent,omitempty"`
}

type RescheduleRequest struct {
	Date string `json:"date"`
	From string `json:"from"`
	To   string `json:"to"`
}

type CancelRequest struct {
	Confirm bool `json:"confirm"`
}

// AppointmentResponse is an appointment plus the actions its status offers.
type AppointmentResponse struct {
	models.Appointment
	Actions []models.Action `json:"actions"`
}

func NewAppointmentResponse(a models.Appointment) AppointmentResponse {
	actions := models.AllowedActions(a.Status)
	if actions == nil {
		actions = []models.Action{}
	}
	return AppointmentResponse{Appointment: a, Actions: actions}
}

// Cursor feed

type FeedQuery struct {
	LastCreatedAt *time.Time
	LastID        string
	Status        *models.Status
	Limit         int
}

type FeedPage struct {
	Appointments  []AppointmentResponse `json:"appointments"`
	HasMore       bool                  `json:"hasMore"`
	LastCreatedAt *time.Time            `json:"lastCreatedAt,omitempty"`
	LastID        string                `json:"lastId,omitempty"`
}
