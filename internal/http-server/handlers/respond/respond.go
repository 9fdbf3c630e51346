// Package respond writes error bodies for the sentinel errors in pkg/response.
package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"estate-booking/pkg/response"
	"estate-booking/pkg/sl"

	"github.com/go-chi/render"
)

// Error logs err and writes the status and code it maps to. action completes
// the generic "failed to ..." message of unexpected errors.
func Error(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, action string) {
	status, code, msg := classify(err, action)

	if status >= http.StatusInternalServerError {
		log.Error("Failed to "+action, sl.Err(err))
	} else {
		log.Warn("Request rejected", slog.String("code", string(code)), sl.Err(err))
	}

	w.WriteHeader(status)
	render.JSON(w, r, response.Error(string(code), msg))
}

// DecodeFailed answers a request whose body could not be decoded.
func DecodeFailed(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	log.Error("Failed to decode request body", sl.Err(err))
	w.WriteHeader(http.StatusBadRequest)
	render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
}

func classify(err error, action string) (int, response.ErrCode, string) {
	var vErr *response.ValidationError

	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, response.VALIDATION_FAILED, vErr.Error()
	case errors.Is(err, response.ErrValidation):
		return http.StatusBadRequest, response.VALIDATION_FAILED, "validation failed"
	case errors.Is(err, response.ErrBadRequest):
		return http.StatusBadRequest, response.BAD_REQUEST, "bad request"
	case errors.Is(err, response.ErrNotFound):
		return http.StatusNotFound, response.NOT_FOUND, "resource not found"
	case errors.Is(err, response.ErrSlotNotAvailable):
		return http.StatusConflict, response.SLOT_NOT_AVAILABLE, "slot is not available"
	case errors.Is(err, response.ErrInvalidTransition):
		return http.StatusConflict, response.INVALID_TRANSITION, "action is not allowed in the current status"
	case errors.Is(err, response.ErrConflict):
		return http.StatusConflict, response.CONFLICT, "resource was changed concurrently"
	case errors.Is(err, response.ErrLocked):
		return http.StatusLocked, response.LOCKED, "resource is busy, try again"
	default:
		return http.StatusInternalServerError, response.FAILED_REQUEST, "failed to " + action
	}
}
