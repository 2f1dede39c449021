// Package middleware contains the HTTP middleware chain: panic recovery,
// request-id propagation and request metrics.
//
// Mounting order matters and is fixed by the router assembly: RequestID
// wraps Recoverer wraps Metrics wraps the handlers. Every log line emitted
// while a request is being handled, including the recoverer's panic record
// and the metrics middleware's completion record, therefore carries the id
// established by RequestID.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/microtrace/microtrace/internal/logging"
)

// DefaultRequestIDHeader is used when no header name is configured.
const DefaultRequestIDHeader = "X-Request-ID"

// RequestID ensures every request carries an id for tracing/logging.
//
// The id is taken from the configured inbound header when present and
// generated as a UUIDv4 otherwise. It is published into the request context
// for all downstream processing and set on the response up front, so the
// client sees it even when the handler panics and the recoverer writes the
// error response. The ambient value lives on the derived context only:
// concurrent requests never observe each other's ids and nothing survives
// the request.
func RequestID(header string) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultRequestIDHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(header)
			if id == "" {
				id = uuid.NewString()
			}

			// Response headers cannot be amended after the handler writes,
			// so the echo happens before dispatch.
			w.Header().Set(header, id)

			ctx := logging.WithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
