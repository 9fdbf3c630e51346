package get

import (
	"context"
	"log/slog"
	"net/http"

	"estate-booking/internal/http-server/handlers/respond"
	"estate-booking/internal/models"
	"estate-booking/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type WindowGenerator interface {
	AvailabilityWindow(ctx context.Context, appointmentType models.AppointmentType, agent string) (*models.AvailabilityWindow, error)
}

type Response struct {
	response.Response
	Availability *models.AvailabilityWindow `json:"availability,omitempty"`
}

// New serves GET /availability?type=call|house_touring[&agent=<owner>].
func New(log *slog.Logger, generator WindowGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()
		appointmentType := models.AppointmentType(q.Get("type"))

		window, err := generator.AvailabilityWindow(r.Context(), appointmentType, q.Get("agent"))
		if err != nil {
			respond.Error(w, r, log, err, "generate availability")
			return
		}

		log.Debug("Availability generated", slog.String("owner", window.Owner), slog.Int("dates", len(window.Dates)))

		render.JSON(w, r, Response{
			Availability: window,
		})
	}
}
