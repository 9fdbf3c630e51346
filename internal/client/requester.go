// Package client talks to the booking API on behalf of the admin UI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"estate-booking/internal/config"
	"estate-booking/pkg/middleware/mwOwner"
	"estate-booking/pkg/response"
	"estate-booking/pkg/sl"

	"github.com/go-chi/render"
)

// HeaderTag carries the logical resource a request reads or invalidates.
const HeaderTag = "X-Cache-Tag"

type RequestOptions struct {
	Method string
	Data   any
	Token  string
	Tag    string
}

// Requester performs one API call and decodes the JSON body into out.
// Failures are reported as the sentinels of pkg/response.
type Requester interface {
	Request(ctx context.Context, path string, opts RequestOptions, out any) error
}

// APIError is a non-2xx answer. It unwraps to the matching sentinel.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Code == string(response.VALIDATION_FAILED):
		return response.NewValidationError("", e.Message)
	case e.Status == http.StatusBadRequest:
		return response.ErrBadRequest
	case e.Status == http.StatusNotFound:
		return response.ErrNotFound
	case e.Status == http.StatusLocked:
		return response.ErrLocked
	case e.Code == string(response.SLOT_NOT_AVAILABLE):
		return response.ErrSlotNotAvailable
	case e.Code == string(response.INVALID_TRANSITION):
		return response.ErrInvalidTransition
	case e.Status == http.StatusConflict:
		return response.ErrConflict
	default:
		return response.ErrTransport
	}
}

type HTTPRequester struct {
	baseURL string
	token   string
	owner   string
	client  *http.Client
	log     *slog.Logger
}

func NewHTTPRequester(log *slog.Logger, cfg config.Client) *HTTPRequester {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPRequester{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
		log:     log.With(slog.String("component", "client")),
	}
}

// WithOwner sets the agent id sent on every request, for deployments where
// no gateway resolves it from the token.
func (h *HTTPRequester) WithOwner(owner string) *HTTPRequester {
	h.owner = owner
	return h
}

func (h *HTTPRequester) Request(ctx context.Context, path string, opts RequestOptions, out any) error {
	const op = "client.HTTPRequester.Request"

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Data != nil {
		raw, err := json.Marshal(opts.Data)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+"/"+strings.TrimLeft(path, "/"), body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := opts.Token
	if token == "" {
		token = h.token
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if h.owner != "" {
		req.Header.Set(mwOwner.HeaderOwner, h.owner)
	}
	if opts.Tag != "" {
		req.Header.Set(HeaderTag, opts.Tag)
	}

	log := h.log.With(
		slog.String("method", method),
		slog.String("path", path),
		slog.String("tag", opts.Tag),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		log.Warn("request failed", sl.Err(err))
		return fmt.Errorf("%s: %w: %v", op, response.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}

		var errBody response.Response
		if err := render.DecodeJSON(resp.Body, &errBody); err == nil {
			apiErr.Code = errBody.Code
			apiErr.Message = errBody.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}

		log.Debug("request rejected", slog.Int("status", resp.StatusCode), slog.String("code", apiErr.Code))
		return fmt.Errorf("%s: %w", op, apiErr)
	}

	if out == nil {
		return nil
	}
	if err := render.DecodeJSON(resp.Body, out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: decode response: %w: %v", op, response.ErrTransport, err)
	}

	return nil
}
