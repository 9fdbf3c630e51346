package cancel

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"estate-booking/api"
	"estate-booking/internal/models"
	"estate-booking/pkg/response"

	"github.com/go-chi/chi/v5"
)

type stubCanceller struct {
	confirmed bool
}

func (s *stubCanceller) CancelAppointment(ctx context.Context, owner, id string, confirmed bool) (*api.AppointmentResponse, error) {
	s.confirmed = confirmed
	if !confirmed {
		return nil, response.NewValidationError("confirm", "cancellation must be confirmed")
	}
	resp := api.NewAppointmentResponse(models.Appointment{ID: id, Status: models.StatusCancelled})
	return &resp, nil
}

func TestCancelRequiresConfirmation(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := chi.NewRouter()
	stub := &stubCanceller{}
	router.Post("/admin/appointments/{id}/cancel", New(log, stub))

	cases := []struct {
		body   string
		status int
	}{
		{`{}`, http.StatusBadRequest},
		{`{"confirm":false}`, http.StatusBadRequest},
		{`{"confirm":true}`, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/admin/appointments/a-1/cancel", strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.body, tc.status, rec.Code)
		}
	}
	if !stub.confirmed {
		t.Fatalf("confirmation was not passed through")
	}
}
