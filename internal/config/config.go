// Package config handles all configuration loading and validation for MicroTrace.
//
// Configuration is strictly environment-based with fail-fast validation.
// All settings are loaded from environment variables with sensible defaults
// where appropriate.
//
// # Environment Variables
//
// Service identification:
//   - APP_NAME: Service name (default: "microtrace")
//   - APP_VERSION: Service version (default: "0.1.0")
//   - APP_ENV: Environment (default: "development")
//
// HTTP server:
//   - HTTP_ADDR: Listen address (default: ":8080")
//   - REQUEST_ID_HEADER: Header carrying the request id (default: "X-Request-ID")
//
// Logging:
//   - LOG_LEVEL: debug, info, warn or error (default: "info")
//
// Worker / chaos injection:
//   - WORKER_BASE_DELAY_MS: Baseline simulated work delay (default: 10)
//   - CHAOS_ENABLED: "true" (case-insensitive) enables chaos delays (default: false)
//   - CHAOS_PROBABILITY: Per-call chance of an extra delay, 0.0-1.0 (default: 0.05)
//   - CHAOS_MIN_DELAY_MS / CHAOS_MAX_DELAY_MS: Extra delay range (default: 100-200)
//
// Tracing:
//   - TRACING_ENABLED: Enable OTLP span export (default: false)
//   - OTLP_ENDPOINT: Collector endpoint in host:port format (required when enabled)
//   - TRACE_SAMPLING_RATE: 0.0-1.0 (default: 1.0)
//
// Metrics:
//   - METRICS_NAMESPACE: Prometheus metric name prefix (default: "microtrace")
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config defines the complete MicroTrace service configuration.
//
// All fields are populated from environment variables during LoadFromEnv().
type Config struct {
	// ServiceName identifies the application (from APP_NAME).
	ServiceName string

	// ServiceVersion is the application version (from APP_VERSION).
	ServiceVersion string

	// Environment specifies the deployment environment (from APP_ENV).
	Environment string

	// HTTPAddr is the address the HTTP server listens on.
	HTTPAddr string

	// RequestIDHeader is the header name read from requests and echoed
	// on every response.
	RequestIDHeader string

	// LogLevel is the minimum level emitted by the structured logger.
	LogLevel string

	// MetricsNamespace prefixes every Prometheus metric name.
	MetricsNamespace string

	// WorkerBaseDelay is the fixed simulated work delay per analyze call.
	WorkerBaseDelay time.Duration

	// ChaosEnabled gates randomized extra latency injection.
	ChaosEnabled bool

	// ChaosProbability is the per-call chance of injecting extra latency.
	ChaosProbability float64

	// ChaosMinDelay and ChaosMaxDelay bound the injected delay.
	ChaosMinDelay time.Duration
	ChaosMaxDelay time.Duration

	// TracingEnabled controls whether spans are exported over OTLP.
	TracingEnabled bool

	// OTLPEndpoint is the trace collector endpoint in host:port format.
	// Required when TracingEnabled is true.
	OTLPEndpoint string

	// TraceSamplingRate determines what fraction of traces to sample.
	TraceSamplingRate float64
}

// Common validation errors returned by LoadFromEnv and Validate.
var (
	// ErrInvalidLogLevel indicates LOG_LEVEL has an unrecognized value.
	ErrInvalidLogLevel = errors.New("LOG_LEVEL must be one of: debug, info, warn, error")

	// ErrMissingOTLPEndpoint indicates tracing is enabled without a collector endpoint.
	ErrMissingOTLPEndpoint = errors.New("OTLP_ENDPOINT is required when TRACING_ENABLED is true")

	// ErrInvalidOTLPEndpoint indicates the OTLP endpoint format is invalid.
	ErrInvalidOTLPEndpoint = errors.New("OTLP_ENDPOINT must be in format host:port")

	// ErrInvalidSamplingRate indicates trace sampling rate is out of valid range.
	ErrInvalidSamplingRate = errors.New("TRACE_SAMPLING_RATE must be between 0.0 and 1.0")

	// ErrInvalidChaosProbability indicates chaos probability is out of valid range.
	ErrInvalidChaosProbability = errors.New("CHAOS_PROBABILITY must be between 0.0 and 1.0")

	// ErrInvalidChaosRange indicates the chaos delay bounds are inconsistent.
	ErrInvalidChaosRange = errors.New("CHAOS_MIN_DELAY_MS must be positive and not exceed CHAOS_MAX_DELAY_MS")
)

// LoadFromEnv loads and validates service configuration from environment variables.
//
// It applies defaults for every unset variable and returns an error when a
// value is present but invalid, or when tracing is enabled without a valid
// collector endpoint.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		ServiceName:       getEnvString("APP_NAME", "microtrace"),
		ServiceVersion:    getEnvString("APP_VERSION", "0.1.0"),
		Environment:       getEnvString("APP_ENV", "development"),
		HTTPAddr:          getEnvString("HTTP_ADDR", ":8080"),
		RequestIDHeader:   getEnvString("REQUEST_ID_HEADER", "X-Request-ID"),
		LogLevel:          strings.ToLower(getEnvString("LOG_LEVEL", "info")),
		MetricsNamespace:  getEnvString("METRICS_NAMESPACE", "microtrace"),
		WorkerBaseDelay:   getEnvDurationMS("WORKER_BASE_DELAY_MS", 10*time.Millisecond),
		ChaosEnabled:      getEnvBool("CHAOS_ENABLED", false),
		ChaosProbability:  getEnvFloat("CHAOS_PROBABILITY", 0.05),
		ChaosMinDelay:     getEnvDurationMS("CHAOS_MIN_DELAY_MS", 100*time.Millisecond),
		ChaosMaxDelay:     getEnvDurationMS("CHAOS_MAX_DELAY_MS", 200*time.Millisecond),
		TracingEnabled:    getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:      getEnvString("OTLP_ENDPOINT", ""),
		TraceSamplingRate: getEnvFloat("TRACE_SAMPLING_RATE", 1.0),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoadFromEnv loads configuration from environment or panics on error.
//
// This is a convenience function for application startup when configuration
// errors should terminate the program.
func MustLoadFromEnv() Config {
	cfg, err := LoadFromEnv()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration from environment: %v", err))
	}
	return cfg
}

// Validate verifies that the configuration is internally consistent and complete.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: got '%s'", ErrInvalidLogLevel, c.LogLevel)
	}

	if c.ChaosProbability < 0.0 || c.ChaosProbability > 1.0 {
		return fmt.Errorf("%w: got %f", ErrInvalidChaosProbability, c.ChaosProbability)
	}

	if c.ChaosMinDelay <= 0 || c.ChaosMinDelay > c.ChaosMaxDelay {
		return fmt.Errorf("%w: got %s-%s", ErrInvalidChaosRange, c.ChaosMinDelay, c.ChaosMaxDelay)
	}

	if c.TraceSamplingRate < 0.0 || c.TraceSamplingRate > 1.0 {
		return fmt.Errorf("%w: got %f", ErrInvalidSamplingRate, c.TraceSamplingRate)
	}

	if c.TracingEnabled {
		if strings.TrimSpace(c.OTLPEndpoint) == "" {
			return ErrMissingOTLPEndpoint
		}
		if !isValidEndpoint(c.OTLPEndpoint) {
			return fmt.Errorf("%w: got '%s'", ErrInvalidOTLPEndpoint, c.OTLPEndpoint)
		}
	}

	return nil
}

// isValidEndpoint verifies that an endpoint string is in valid host:port format.
func isValidEndpoint(endpoint string) bool {
	parts := strings.Split(endpoint, ":")
	if len(parts) != 2 {
		return false
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return false
	}
	return parts[0] != ""
}

// getEnvString returns the value of an environment variable or a default value.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns an environment variable parsed as a boolean or a default value.
//
// Values "true" (case-insensitive) and "1" are considered true.
// All other values, including empty string, are considered false.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvFloat returns an environment variable parsed as a float64 or a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvDurationMS returns an environment variable interpreted as a number of
// milliseconds, or a default value.
func getEnvDurationMS(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal) * time.Millisecond
		}
	}
	return defaultValue
}
