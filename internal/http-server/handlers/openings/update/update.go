package update

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

type RangeUpdater interface {
	UpdateOpeningRange(ctx context.Context, owner string, req *api.OpeningRangeUpdateRequest) (*models.OpeningHours, error)
}

type Request struct {
	api.OpeningRangeUpdateRequest
}

type Response struct {
	response.Response
	OpeningHours *models.OpeningHours `json:"openingHours,omitempty"`
}

func New(log *slog.Logger, updater RangeUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.openings.update.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.DecodeFailed(w, r, log, err)
			return
		}

		hours, err := updater.UpdateOpeningRange(r.Context(), mwOwner.FromContext(r.Context()), &req.OpeningRangeUpdateRequest)
		if err != nil {
			respond.Error(w, r, log, err, "update opening range")
			return
		}

		log.Info("Opening range updated", slog.String("day", req.Day), slog.String("old", req.Old.String()), slog.String("new", req.New.String()))

		render.JSON(w, r, Response{
			OpeningHours: hours,
		})
	}
}
