// Package workflow drives the admin's appointment actions. Local state only
// changes after the server answered; every failure leaves a message for the
// user.
package workflow

import (
	"errors"
	"sync"

	"estate-booking/pkg/response"
)

var (
	ErrBusy       = errors.New("workflow: a request is already in flight")
	ErrNotOpen    = errors.New("workflow: session is not open")
	ErrNotPending = errors.New("workflow: no cancellation awaiting confirmation")
)

// status is the busy flag and message shared by every workflow.
type status struct {
	mu      sync.Mutex
	busy    bool
	message string
}

// begin raises the busy flag. It fails if it is already raised.
func (s *status) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return false
	}
	s.busy = true
	s.message = ""
	return true
}

func (s *status) end(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false
	s.message = message
}

func (s *status) setMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
}

func (s *status) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.busy
}

// Message is the user-visible outcome of the last action, empty on success.
func (s *status) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.message
}

func messageFor(err error, action string) string {
	var vErr *response.ValidationError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &vErr):
		return vErr.Reason
	case errors.Is(err, response.ErrSlotNotAvailable):
		return "That time is no longer available. Reopen to see current availability."
	case errors.Is(err, response.ErrInvalidTransition):
		return "This appointment can no longer be " + action + "."
	case errors.Is(err, response.ErrNotFound):
		return "This appointment no longer exists."
	case errors.Is(err, response.ErrLocked), errors.Is(err, response.ErrConflict):
		return "The calendar was being changed. Please try again."
	case errors.Is(err, response.ErrTransport):
		return "Could not reach the server. Please try again."
	default:
		return "The appointment could not be " + action + "."
	}
}
