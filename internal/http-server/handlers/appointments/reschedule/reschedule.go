package reschedule

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

type AppointmentRescheduler interface {
	RescheduleAppointment(ctx context.Context, owner, id string, req *api.RescheduleRequest) (*api.AppointmentResponse, error)
}

type Request struct {
	api.RescheduleRequest
}

type Response struct {
	response.Response
	Appointment *api.AppointmentResponse `json:"appointment,omitempty"`
}

func New(log *slog.Logger, rescheduler AppointmentRescheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.reschedule.New"

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

		log.Debug("Request body decoded", slog.Any("request", req))

		appointment, err := rescheduler.RescheduleAppointment(r.Context(), mwOwner.FromContext(r.Context()), id, &req.RescheduleRequest)
		if err != nil {
			respond.Error(w, r, log, err, "reschedule appointment")
			return
		}

		log.Info("Appointment rescheduled",
			slog.String("id", id),
			slog.String("date", appointment.Date),
			slog.String("from", appointment.BookedTime.From),
		)

		responseOK(w, r, appointment)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, appointment *api.AppointmentResponse) {
	render.JSON(w, r, Response{
		Appointment: appointment,
	})
}
