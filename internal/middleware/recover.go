package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/microtrace/microtrace/internal/logging"
)

// Recoverer converts panics that escape the handler chain into plain 500
// responses. It sits outside the metrics middleware, so by the time it runs
// the failure has already been counted and re-raised, and inside RequestID,
// so the panic record below carries the request id.
//
// chi ships its own Recoverer, but it pretty-prints stacks to stderr; this
// one keeps the one-JSON-object-per-line log contract.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logging.FromContext(r.Context()).Named("microtrace.request").Error("panic_recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stacktrace"),
				)

				w.WriteHeader(http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
