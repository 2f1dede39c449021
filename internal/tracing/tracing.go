// Package tracing configures the OpenTelemetry trace pipeline: an OTLP gRPC
// exporter behind a batch processor, a server span per inbound request, and
// an instrumented client for outbound calls.
//
// Setup is split into two independently idempotent transitions, "provider
// configured" and "router instrumented". Each happens at most once per
// Tracing instance; repeated calls are no-ops that return the existing
// state, which keeps startup correct even when wiring code runs twice.
package tracing

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/go-chi/chi/v5"
)

// Options configures the trace pipeline.
type Options struct {
	// ServiceName becomes the service.name resource attribute.
	ServiceName string

	// ServiceVersion becomes the service.version resource attribute.
	ServiceVersion string

	// Environment becomes the deployment.environment resource attribute.
	Environment string

	// Endpoint is the OTLP gRPC collector endpoint in host:port format.
	Endpoint string

	// SamplingRate is the parent-based trace sampling ratio, 0.0-1.0.
	SamplingRate float64

	// ExcludedPaths are request paths that never get a server span,
	// e.g. the metrics scrape endpoint.
	ExcludedPaths []string
}

// Tracing owns the tracer provider lifecycle.
type Tracing struct {
	opts Options

	configureOnce  sync.Once
	instrumentOnce sync.Once

	provider     *sdktrace.TracerProvider
	configureErr error
}

// New creates an unconfigured Tracing instance. Nothing is exported until
// Configure runs.
func New(opts Options) *Tracing {
	return &Tracing{opts: opts}
}

// Configure builds the tracer provider and installs it globally.
//
// The provider is wired to an OTLP gRPC exporter through a batch span
// processor, so export is asynchronous and never blocks request handling.
// Configure is idempotent: every call after the first returns the provider
// (or error) produced by the first call.
func (t *Tracing) Configure(ctx context.Context) (*sdktrace.TracerProvider, error) {
	t.configureOnce.Do(func() {
		exporter, err := otlptrace.New(
			ctx,
			otlptracegrpc.NewClient(
				otlptracegrpc.WithEndpoint(t.opts.Endpoint),
				otlptracegrpc.WithInsecure(),
			),
		)
		if err != nil {
			t.configureErr = fmt.Errorf("failed to create OTLP trace exporter: %w", err)
			return
		}

		res, err := resource.New(
			ctx,
			resource.WithAttributes(
				semconv.ServiceName(t.opts.ServiceName),
				semconv.ServiceVersion(t.opts.ServiceVersion),
				semconv.DeploymentEnvironment(t.opts.Environment),
			),
		)
		if err != nil {
			t.configureErr = fmt.Errorf("failed to create resource: %w", err)
			return
		}

		provider := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(t.opts.SamplingRate))),
		)

		otel.SetTracerProvider(provider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

		t.provider = provider
	})

	return t.provider, t.configureErr
}

// Instrument mounts the server span middleware on the router.
//
// It must run before routes are registered. Repeated calls are no-ops, so a
// router assembled twice during startup does not end up with stacked span
// middlewares.
func (t *Tracing) Instrument(r chi.Router) {
	t.instrumentOnce.Do(func() {
		r.Use(t.middleware())
	})
}

// Shutdown flushes buffered spans and stops the provider. Safe to call when
// Configure never ran or failed.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// NewHTTPClient returns an *http.Client whose transport creates a client
// span per outbound call and propagates trace context downstream.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
