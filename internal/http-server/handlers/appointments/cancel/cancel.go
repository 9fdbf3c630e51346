package cancel

import (
	"context"
	"log/slog"
	"net/http"

	"estate-booking/api"
	"estate-booking/internal/http-server/handlers/respond"
	"estate-booking/pkg/middleware/mwOwner"
	"estate-booking/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type AppointmentCanceller interface {
	CancelAppointment(ctx context.Context, owner, id string, confirmed bool) (*api.AppointmentResponse, error)
}

type Request struct {
	api.CancelRequest
}

type Response struct {
	response.Response
	Appointment *api.AppointmentResponse `json:"appointment,omitempty"`
}

// New cancels an appointment. The body must carry {"confirm": true}.
func New(log *slog.Logger, canceller AppointmentCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.cancel.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.DecodeFailed(w, r, log, err)
			return
		}

		appointment, err := canceller.CancelAppointment(r.Context(), mwOwner.FromContext(r.Context()), id, req.Confirm)
		if err != nil {
			respond.Error(w, r, log, err, "cancel appointment")
			return
		}

		log.Info("Appointment cancelled", slog.String("id", id))

		render.JSON(w, r, Response{
			Appointment: appointment,
		})
	}
}
