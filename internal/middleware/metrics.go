package middleware

import (
	"math"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/microtrace/microtrace/internal/httperr"
	"github.com/microtrace/microtrace/internal/logging"
	"github.com/microtrace/microtrace/internal/metrics"
)

// Metrics wraps every request to record its count, latency and failures.
//
// The outcome status is the handler's own status code; a declared error
// stored via httperr keeps that code and additionally increments the error
// counter under its kind. A panic is counted under the dynamic type of the
// panic value, classified as a 500, and re-raised unchanged for the outer
// recoverer.
//
// The deferred step runs exactly once per request regardless of outcome: it
// records the counter increment, the latency observation and one structured
// completion log with method, path, status and elapsed milliseconds rounded
// to three decimals.
func Metrics(rm *metrics.RequestMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := r.Method
			start := time.Now()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx, slot := httperr.WithSlot(r.Context())
			r = r.WithContext(ctx)

			defer func() {
				elapsed := time.Since(start)
				// The route pattern is only known after chi routed the
				// request, hence the lazy read.
				path := routePattern(r)

				status := http.StatusInternalServerError
				rec := recover()
				switch {
				case rec != nil:
					rm.RecordError(method, path, panicKind(rec))
				case slot.Declared() != nil:
					e := slot.Declared()
					status = e.Status
					rm.RecordError(method, path, e.Kind)
				default:
					status = ww.Status()
					if status == 0 {
						status = http.StatusOK
					}
				}

				rm.RecordRequest(method, path, status, elapsed)

				elapsedMS := math.Round(elapsed.Seconds()*1e6) / 1e3
				logging.FromContext(ctx).Named("microtrace.request").Info("request_completed",
					zap.String("method", method),
					zap.String("path", path),
					zap.Int("status_code", status),
					zap.Float64("elapsed_ms", elapsedMS),
				)

				if rec != nil {
					panic(rec)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// routePattern extracts the route pattern from chi's RouteContext so metric
// labels group by template instead of raw path. Falls back to the URL path.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// panicKind names the dynamic type of a recovered panic value for the
// exception metric label, e.g. "runtime.boundsError" or "httperr.Error".
func panicKind(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "panic"
	}
	return strings.TrimPrefix(t.String(), "*")
}
