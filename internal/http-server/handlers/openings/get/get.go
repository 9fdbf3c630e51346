package get

import (
	"context"
	"log/slog"
	"net/http"

	"estate-booking/internal/http-server/handlers/respond"
	"estate-booking/internal/models"
	"estate-booking/pkg/middleware/mwOwner"
	"estate-booking/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type OpeningHoursReader interface {
	ReadOpeningHours(ctx context.Context, owner string) (*models.OpeningHours, error)
}

type Response struct {
	response.Response
	OpeningHours *models.OpeningHours `json:"openingHours,omitempty"`
}

func New(log *slog.Logger, reader OpeningHoursReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.openings.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		hours, err := reader.ReadOpeningHours(r.Context(), mwOwner.FromContext(r.Context()))
		if err != nil {
			respond.Error(w, r, log, err, "read opening hours")
			return
		}

		render.JSON(w, r, Response{
			OpeningHours: hours,
		})
	}
}
