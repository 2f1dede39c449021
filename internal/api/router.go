// Package api assembles the router and implements the HTTP handlers.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/microtrace/microtrace/internal/config"
	"github.com/microtrace/microtrace/internal/metrics"
	"github.com/microtrace/microtrace/internal/middleware"
	"github.com/microtrace/microtrace/internal/tracing"
	"github.com/microtrace/microtrace/internal/worker"
)

// NewRouter wires the middleware chain and routes.
//
// Chain order, outermost first: RealIP, RequestID, Recoverer, Metrics, then
// the tracing span middleware. RequestID outside Recoverer means the
// response id header survives a panic; Metrics inside Recoverer means a
// re-raised panic still becomes a 500 response after being counted. tr may
// be nil when tracing is disabled.
func NewRouter(cfg config.Config, w *worker.Service, rm *metrics.RequestMetrics, tr *tracing.Tracing) *chi.Mux {
	h := &Handler{worker: w}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID(cfg.RequestIDHeader))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Metrics(rm))
	if tr != nil {
		tr.Instrument(r)
	}

	r.Post("/analyze", h.Analyze)
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", rm.Handler())

	return r
}
