package create

import (
	"context"
	"log/slog"
	"net/http"

	"estate-booking/api"
	"estate-booking/internal/http-server/handlers/respond"
	"estate-booking/pkg/middleware/mwOwner"
	"estate-booking/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type AppointmentBooker interface {
	BookAppointment(ctx context.Context, owner string, req *api.BookingRequest) (*api.AppointmentResponse, error)
}

type Request struct {
	api.BookingRequest
}

type Response struct {
	response.Response
	Appointment *api.AppointmentResponse `json:"appointment,omitempty"`
}

// New books an appointment. Behind the owner middleware the acting agent
// owns it; on the public route the request's agent or the default agent does.
func New(log *slog.Logger, booker AppointmentBooker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.DecodeFailed(w, r, log, err)
			return
		}

		log.Debug("Request body decoded", slog.String("type", string(req.Type)), slog.String("date", req.Date), slog.String("from", req.From))

		appointment, err := booker.BookAppointment(r.Context(), mwOwner.FromContext(r.Context()), &req.BookingRequest)
		if err != nil {
			respond.Error(w, r, log, err, "book appointment")
			return
		}

		log.Info("Appointment booked", slog.String("id", appointment.ID), slog.String("owner", appointment.Owner))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Appointment: appointment,
		})
	}
}
