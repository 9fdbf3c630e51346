package create

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"estate-booking/api"
	"estate-booking/internal/models"
	"estate-booking/pkg/middleware/mwOwner"
)

type stubBooker struct {
	owner string
	req   *api.BookingRequest
}

func (s *stubBooker) BookAppointment(ctx context.Context, owner string, req *api.BookingRequest) (*api.AppointmentResponse, error) {
	s.owner, s.req = owner, req
	if owner == "" {
		owner = "agent-admin"
	}
	resp := api.NewAppointmentResponse(models.Appointment{ID: "a-1", Owner: owner, Type: req.Type, Status: models.StatusUpcoming})
	return &resp, nil
}

const booking = `{"type":"call","date":"2025-01-09","from":"10:00","callReason":"pricing",
	"customer":{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","phone":"1"}}`

func TestCreate(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cases := []struct {
		name      string
		owner     string
		wantOwner string
	}{
		{"public", "", "agent-admin"},
		{"admin", "agent-7", "agent-7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubBooker{}

			req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(booking))
			if tc.owner != "" {
				req = req.WithContext(mwOwner.WithOwner(req.Context(), tc.owner))
			}
			rec := httptest.NewRecorder()
			New(log, stub).ServeHTTP(rec, req)

			if rec.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
			}
			if stub.owner != tc.owner || stub.req.Customer.Email != "ada@example.com" || stub.req.CallReason != "pricing" {
				t.Fatalf("unexpected call owner=%q req=%+v", stub.owner, stub.req)
			}

			var body Response
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Appointment.Owner != tc.wantOwner {
				t.Fatalf("expected owner %q, got %q", tc.wantOwner, body.Appointment.Owner)
			}
			want := []models.Action{models.ActionComplete, models.ActionReschedule, models.ActionCancel}
			if len(body.Appointment.Actions) != len(want) {
				t.Fatalf("expected actions %v, got %v", want, body.Appointment.Actions)
			}
		})
	}
}
