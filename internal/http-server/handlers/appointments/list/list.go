package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"estate-booking/api"
	"estate-booking/internal/http-server/handlers/respond"
	"estate-booking/internal/models"
	"estate-booking/pkg/middleware/mwOwner"
	"estate-booking/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type AppointmentLister interface {
	ListAppointments(ctx context.Context, owner string, q api.FeedQuery) (*api.FeedPage, error)
}

type Response struct {
	response.Response
	api.FeedPage
}

// New serves one page of the owner's feed:
// ?lastCreatedAt=<RFC3339Nano>[&lastId=<id>][&status=<status>][&limit=<n>].
func New(log *slog.Logger, lister AppointmentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.list.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q, err := parseQuery(r)
		if err != nil {
			respond.Error(w, r, log, err, "list appointments")
			return
		}

		page, err := lister.ListAppointments(r.Context(), mwOwner.FromContext(r.Context()), q)
		if err != nil {
			respond.Error(w, r, log, err, "list appointments")
			return
		}

		log.Debug("Feed page served", slog.Int("count", len(page.Appointments)), slog.Bool("has_more", page.HasMore))

		render.JSON(w, r, Response{
			FeedPage: *page,
		})
	}
}

func parseQuery(r *http.Request) (api.FeedQuery, error) {
	values := r.URL.Query()

	var q api.FeedQuery

	if raw := values.Get("lastCreatedAt"); raw != "" {
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return q, response.NewValidationError("lastCreatedAt", "must be an RFC 3339 timestamp")
		}
		q.LastCreatedAt = &at
	}

	q.LastID = values.Get("lastId")

	if raw := values.Get("status"); raw != "" {
		status := models.Status(raw)
		q.Status = &status
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return q, response.NewValidationError("limit", "must be a positive integer")
		}
		q.Limit = limit
	}

	return q, nil
}
