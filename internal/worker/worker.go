// Package worker holds the analysis computation the API exposes. It stands
// in for a downstream service: the arithmetic is trivial on purpose, and the
// simulated delays exist so latency is observable in metrics and traces.
package worker

import (
	"context"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/microtrace/microtrace/internal/logging"
)

// Default timing parameters, applied by New for zero-valued fields.
const (
	DefaultBaseDelay        = 10 * time.Millisecond
	DefaultChaosProbability = 0.05
	DefaultChaosMinDelay    = 100 * time.Millisecond
	DefaultChaosMaxDelay    = 200 * time.Millisecond
)

// Result is the outcome of one analysis. Pure value, no identity.
type Result struct {
	Sum        float64 `json:"sum"`
	Difference float64 `json:"difference"`
}

// Config tunes the simulated work.
type Config struct {
	// BaseDelay is the fixed delay incurred by every call.
	BaseDelay time.Duration

	// ChaosEnabled gates randomized extra latency.
	ChaosEnabled bool

	// ChaosProbability is the per-call chance of extra latency, 0.0-1.0.
	ChaosProbability float64

	// ChaosMinDelay and ChaosMaxDelay bound the extra latency; the actual
	// delay is drawn uniformly from the range, independently per call.
	ChaosMinDelay time.Duration
	ChaosMaxDelay time.Duration
}

// Service computes analysis results with observable timing.
type Service struct {
	cfg    Config
	tracer trace.Tracer
}

// New creates a worker service, filling zero-valued config fields with the
// package defaults.
func New(cfg Config) *Service {
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.ChaosProbability == 0 {
		cfg.ChaosProbability = DefaultChaosProbability
	}
	if cfg.ChaosMinDelay == 0 {
		cfg.ChaosMinDelay = DefaultChaosMinDelay
	}
	if cfg.ChaosMaxDelay == 0 {
		cfg.ChaosMaxDelay = DefaultChaosMaxDelay
	}

	return &Service{
		cfg:    cfg,
		tracer: otel.Tracer("microtrace.worker"),
	}
}

// Analyze returns the sum and difference of a and b.
//
// It always succeeds for finite input; the only error it can return is
// ctx.Err() when the caller goes away mid-delay. Every call sleeps for the
// baseline delay, and with chaos enabled may additionally sleep a random
// duration from the configured range. The chaos decision and the delay
// length are randomized independently per call.
func (s *Service) Analyze(ctx context.Context, a, b float64) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "worker.analyze",
		trace.WithAttributes(
			attribute.Float64("worker.input_a", a),
			attribute.Float64("worker.input_b", b),
		),
	)
	defer span.End()

	if err := sleep(ctx, s.cfg.BaseDelay); err != nil {
		return Result{}, err
	}

	span.SetAttributes(attribute.Bool("worker.chaos_enabled", s.cfg.ChaosEnabled))
	if s.cfg.ChaosEnabled && rand.Float64() < s.cfg.ChaosProbability {
		delay := s.cfg.ChaosMinDelay +
			time.Duration(rand.Float64()*float64(s.cfg.ChaosMaxDelay-s.cfg.ChaosMinDelay))
		delayMS := float64(delay) / float64(time.Millisecond)

		span.SetAttributes(attribute.Float64("worker.chaos_delay_ms", delayMS))
		logging.FromContext(ctx).Named("microtrace.worker").Info("chaos_injected",
			zap.Float64("delay_ms", delayMS),
			zap.Float64("probability", s.cfg.ChaosProbability),
		)

		if err := sleep(ctx, delay); err != nil {
			return Result{}, err
		}
	}

	result := Result{Sum: a + b, Difference: a - b}
	span.SetAttributes(
		attribute.Float64("worker.sum", result.Sum),
		attribute.Float64("worker.difference", result.Difference),
	)
	logging.FromContext(ctx).Named("microtrace.worker").Debug("analysis_completed",
		zap.Float64("input_a", a),
		zap.Float64("input_b", b),
		zap.Float64("sum", result.Sum),
	)

	return result, nil
}

// sleep blocks for d or until ctx is cancelled. A cancelled request
// abandons the remaining delay instead of holding the goroutine.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
