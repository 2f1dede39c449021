package tracing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/microtrace/microtrace/internal/logging"
)

// middleware creates one server span per inbound request.
//
// The span starts under a temporary name; chi only resolves the route
// pattern while the handler runs, so the name and route attributes are set
// after the handler returns (lazy capture, keeps label cardinality bounded).
// Paths listed in ExcludedPaths (the metrics scrape endpoint, health checks)
// bypass span creation entirely to avoid tracing noise.
func (t *Tracing) middleware() func(http.Handler) http.Handler {
	excluded := make(map[string]struct{}, len(t.opts.ExcludedPaths))
	for _, p := range t.opts.ExcludedPaths {
		excluded[p] = struct{}{}
	}

	propagator := propagation.TraceContext{}
	var tp trace.TracerProvider = otel.GetTracerProvider()
	if t.provider != nil {
		tp = t.provider
	}
	tracer := tp.Tracer("microtrace/http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := excluded[r.URL.Path]; skip {
				next.ServeHTTP(w, r)
				return
			}

			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, "HTTP "+r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.host", r.Host),
					attribute.String("http.user_agent", r.UserAgent()),
					attribute.String("request.id", logging.RequestID(r.Context())),
				),
			)
			defer span.End()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			routePattern := routePattern(r)
			span.SetName(r.Method + " " + routePattern)
			span.SetAttributes(
				attribute.String("http.route", routePattern),
				attribute.Int("http.status_code", ww.Status()),
				attribute.Int("http.response_content_length", ww.BytesWritten()),
			)

			if ww.Status() >= 400 {
				span.SetStatus(codes.Error, http.StatusText(ww.Status()))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}

// routePattern extracts the templated route from chi's RouteContext, falling
// back to the raw path for unmatched requests.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
