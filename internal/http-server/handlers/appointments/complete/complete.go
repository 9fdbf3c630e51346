package complete

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

type AppointmentCompleter interface {
	CompleteAppointment(ctx context.Context, owner, id string) (*api.AppointmentResponse, error)
}

type Response struct {
	response.Response
	Appointment *api.AppointmentResponse `json:"appointment,omitempty"`
}

func New(log *slog.Logger, completer AppointmentCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.complete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		appointment, err := completer.CompleteAppointment(r.Context(), mwOwner.FromContext(r.Context()), id)
		if err != nil {
			respond.Error(w, r, log, err, "complete appointment")
			return
		}

		log.Info("Appointment completed", slog.String("id", id))

		render.JSON(w, r, Response{
			Appointment: appointment,
		})
	}
}
