package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_ExactResults(t *testing.T) {
	w := New(Config{BaseDelay: time.Millisecond})

	tests := []struct {
		name           string
		a, b           float64
		sum, difference float64
	}{
		{"integers", 2, 3, 5, -1},
		{"negatives", -1.5, 2.5, 1.0, -4.0},
		{"zero", 0, 0, 0, 0},
		{"large", 1e12, -1e12, 0, 2e12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := w.Analyze(context.Background(), tt.a, tt.b)
			require.NoError(t, err)

			// Exact, not approximate: the arithmetic has no rounding step.
			assert.Equal(t, tt.sum, result.Sum)
			assert.Equal(t, tt.difference, result.Difference)
		})
	}
}

func TestAnalyze_BaselineDelay(t *testing.T) {
	base := 20 * time.Millisecond
	w := New(Config{BaseDelay: base})

	start := time.Now()
	_, err := w.Analyze(context.Background(), 1, 2)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, base)
	// No chaos: variance stays bounded.
	assert.Less(t, elapsed, base+100*time.Millisecond)
}

func TestAnalyze_ChaosAlwaysFires(t *testing.T) {
	base := time.Millisecond
	minDelay := 10 * time.Millisecond
	w := New(Config{
		BaseDelay:        base,
		ChaosEnabled:     true,
		ChaosProbability: 1.0,
		ChaosMinDelay:    minDelay,
		ChaosMaxDelay:    20 * time.Millisecond,
	})

	for range 5 {
		start := time.Now()
		_, err := w.Analyze(context.Background(), 1, 2)
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, base+minDelay)
	}
}

func TestAnalyze_ChaosDisabledByDefault(t *testing.T) {
	w := New(Config{
		BaseDelay:     time.Millisecond,
		ChaosMinDelay: 500 * time.Millisecond,
		ChaosMaxDelay: time.Second,
	})

	start := time.Now()
	_, err := w.Analyze(context.Background(), 1, 2)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, 100*time.Millisecond)
}

func TestAnalyze_CancelledContext(t *testing.T) {
	w := New(Config{BaseDelay: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := w.Analyze(ctx, 1, 2)

	require.ErrorIs(t, err, context.Canceled)
	// The remaining delay is abandoned, not served.
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestNew_Defaults(t *testing.T) {
	w := New(Config{})

	assert.Equal(t, DefaultBaseDelay, w.cfg.BaseDelay)
	assert.InDelta(t, DefaultChaosProbability, w.cfg.ChaosProbability, 1e-9)
	assert.Equal(t, DefaultChaosMinDelay, w.cfg.ChaosMinDelay)
	assert.Equal(t, DefaultChaosMaxDelay, w.cfg.ChaosMaxDelay)
}
