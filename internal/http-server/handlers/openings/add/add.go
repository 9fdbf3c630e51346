package add

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

type RangeAdder interface {
	AddOpeningRange(ctx context.Context, owner string, req *api.OpeningRangeRequest) (*models.OpeningHours, error)
}

type Request struct {
	api.OpeningRangeRequest
}

type Response struct {
	response.Response
	OpeningHours *models.OpeningHours `json:"openingHours,omitempty"`
}

func New(log *slog.Logger, adder RangeAdder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.openings.add.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.DecodeFailed(w, r, log, err)
			return
		}

		log.Debug("Request body decoded", slog.Any("request", req))

		hours, err := adder.AddOpeningRange(r.Context(), mwOwner.FromContext(r.Context()), &req.OpeningRangeRequest)
		if err != nil {
			respond.Error(w, r, log, err, "add opening range")
			return
		}

		log.Info("Opening range added", slog.String("day", req.Day), slog.String("from", req.From), slog.String("to", req.To))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			OpeningHours: hours,
		})
	}
}
