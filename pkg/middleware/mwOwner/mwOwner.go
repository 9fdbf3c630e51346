// Package mwOwner resolves the acting agent of admin requests. Authentication
// happens upstream; the gateway forwards the agent id in HeaderOwner.
package mwOwner

import (
	"context"
	"log/slog"
	"net/http"

	"estate-booking/pkg/response"

	"github.com/go-chi/render"
)

const HeaderOwner = "X-Owner-ID"

type ctxKey struct{}

func New(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(
			slog.String("component", "middleware/owner"),
		)

		fn := func(w http.ResponseWriter, r *http.Request) {
			owner := r.Header.Get(HeaderOwner)
			if owner == "" {
				log.Warn("request without owner", slog.String("path", r.URL.Path))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "owner is required"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		}

		return http.HandlerFunc(fn)
	}
}

func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ctxKey{}, owner)
}

func FromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ctxKey{}).(string)
	return owner
}
