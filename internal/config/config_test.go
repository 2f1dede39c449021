package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "microtrace", cfg.ServiceName)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "X-Request-ID", cfg.RequestIDHeader)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "microtrace", cfg.MetricsNamespace)
	assert.Equal(t, 10*time.Millisecond, cfg.WorkerBaseDelay)
	assert.False(t, cfg.ChaosEnabled)
	assert.InDelta(t, 0.05, cfg.ChaosProbability, 1e-9)
	assert.Equal(t, 100*time.Millisecond, cfg.ChaosMinDelay)
	assert.Equal(t, 200*time.Millisecond, cfg.ChaosMaxDelay)
	assert.False(t, cfg.TracingEnabled)
	assert.InDelta(t, 1.0, cfg.TraceSamplingRate, 1e-9)
}

func TestLoadFromEnv_ChaosFlagIsCaseInsensitive(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{"1", true},
		{"false", false},
		{"yes", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("CHAOS_ENABLED="+tt.value, func(t *testing.T) {
			t.Setenv("CHAOS_ENABLED", tt.value)

			cfg, err := LoadFromEnv()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.ChaosEnabled)
		})
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_NAME", "analyzer")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REQUEST_ID_HEADER", "X-Correlation-ID")
	t.Setenv("WORKER_BASE_DELAY_MS", "5")
	t.Setenv("CHAOS_PROBABILITY", "0.5")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "analyzer", cfg.ServiceName)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "X-Correlation-ID", cfg.RequestIDHeader)
	assert.Equal(t, 5*time.Millisecond, cfg.WorkerBaseDelay)
	assert.InDelta(t, 0.5, cfg.ChaosProbability, 1e-9)
}

func TestLoadFromEnv_TracingRequiresEndpoint(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "true")

	_, err := LoadFromEnv()
	require.ErrorIs(t, err, ErrMissingOTLPEndpoint)
}

func TestLoadFromEnv_InvalidEndpoint(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("OTLP_ENDPOINT", "not-an-endpoint")

	_, err := LoadFromEnv()
	require.ErrorIs(t, err, ErrInvalidOTLPEndpoint)
}

func TestLoadFromEnv_ValidTracing(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("OTLP_ENDPOINT", "collector:4317")
	t.Setenv("TRACE_SAMPLING_RATE", "0.25")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	assert.InDelta(t, 0.25, cfg.TraceSamplingRate, 1e-9)
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "sampling rate above one",
			mutate:  func(c *Config) { c.TraceSamplingRate = 1.5 },
			wantErr: ErrInvalidSamplingRate,
		},
		{
			name:    "negative chaos probability",
			mutate:  func(c *Config) { c.ChaosProbability = -0.1 },
			wantErr: ErrInvalidChaosProbability,
		},
		{
			name:    "inverted chaos range",
			mutate:  func(c *Config) { c.ChaosMinDelay = 300 * time.Millisecond },
			wantErr: ErrInvalidChaosRange,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromEnv()
			require.NoError(t, err)

			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}
