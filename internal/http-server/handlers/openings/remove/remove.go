package remove

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

type RangeRemover interface {
	DeleteOpeningRange(ctx context.Context, owner string, req *api.OpeningRangeRequest) (*models.OpeningHours, error)
}

type Response struct {
	response.Response
	OpeningHours *models.OpeningHours `json:"openingHours,omitempty"`
}

// New deletes the range named by the day, from and to query parameters.
func New(log *slog.Logger, remover RangeRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.openings.remove.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()
		req := api.OpeningRangeRequest{
			Day:  q.Get("day"),
			From: q.Get("from"),
			To:   q.Get("to"),
		}

		hours, err := remover.DeleteOpeningRange(r.Context(), mwOwner.FromContext(r.Context()), &req)
		if err != nil {
			respond.Error(w, r, log, err, "delete opening range")
			return
		}

		log.Info("Opening range deleted", slog.String("day", req.Day), slog.String("from", req.From), slog.String("to", req.To))

		render.JSON(w, r, Response{
			OpeningHours: hours,
		})
	}
}
