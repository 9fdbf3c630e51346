package toggle

import (
	"context"
	"log/slog"
	"net/http"

	"estate-booking/api"
	"estate-booking/internal/http-server/handlers/respond"
	"estate-booking/internal/models"
	"estate-booking/pkg/middleware/mwOwner"
	"estate-booking/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type AvailabilitySetter interface {
	SetAvailability(ctx context.Context, owner string, req *api.AvailabilityToggleRequest) (*models.OpeningHours, error)
}

type Request struct {
	api.AvailabilityToggleRequest
}

type Response struct {
	response.Response
	OpeningHours *models.OpeningHours `json:"openingHours,omitempty"`
}

func New(log *slog.Logger, setter AvailabilitySetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.openings.toggle.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.DecodeFailed(w, r, log, err)
			return
		}

		hours, err := setter.SetAvailability(r.Context(), mwOwner.FromContext(r.Context()), &req.AvailabilityToggleRequest)
		if err != nil {
			respond.Error(w, r, log, err, "set availability")
			return
		}

		log.Info("Availability changed", slog.String("availability", string(hours.Availability)))

		render.JSON(w, r, Response{
			OpeningHours: hours,
		})
	}
}
