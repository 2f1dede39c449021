// Package httperr defines the declared HTTP error type used by handlers
// and the per-request slot the metrics middleware reads it back from.
//
// A declared error is a failure the handler anticipated: it carries the
// status code it was answered with and a stable kind name used as the
// `exception` label on the error counter. Anything else that escapes a
// handler (a panic) is an undeclared error and is classified by its
// dynamic type instead.
package httperr

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// Error is a declared HTTP error.
type Error struct {
	// Status is the HTTP status code the request was answered with.
	Status int

	// Kind is a stable name for the error class, used as a metric label.
	// Keep the set of kinds small; it becomes metric cardinality.
	Kind string

	// Message is the human-readable detail returned to the client.
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

// New creates a declared error with an explicit status code and kind.
func New(status int, kind, message string) *Error {
	return &Error{Status: status, Kind: kind, Message: message}
}

// BadRequest creates a 400 validation error.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, "ValidationError", message)
}

// Slot holds at most one declared error for an in-flight request.
//
// The metrics middleware installs a slot into the request context before
// invoking the handler chain and inspects it after the chain returns.
// Handlers record their declared error through Store. The slot is
// per-request state and is never shared across requests.
type Slot struct {
	mu  sync.Mutex
	err *Error
}

func (s *Slot) store(e *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = e
	}
}

// Declared returns the declared error recorded for the request, or nil.
func (s *Slot) Declared() *Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

type slotKey struct{}

// WithSlot installs a fresh slot into ctx and returns both.
func WithSlot(ctx context.Context) (context.Context, *Slot) {
	s := &Slot{}
	return context.WithValue(ctx, slotKey{}, s), s
}

// Store records a declared error into the slot carried by ctx.
// It is a no-op when no slot is installed (e.g. in handler unit tests
// that bypass the middleware chain).
func Store(ctx context.Context, e *Error) {
	if s, ok := ctx.Value(slotKey{}).(*Slot); ok {
		s.store(e)
	}
}
