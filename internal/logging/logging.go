// Package logging configures the process-wide structured logger and carries
// the ambient per-request id through context.
//
// Every record is one JSON object per line on stdout with the fields
// `asctime`, `levelname`, `name`, `message` and `request_id`. Outside of a
// request the request id is the sentinel "-". Setup is idempotent: repeated
// calls return the logger built by the first call and never register a
// second sink.
package logging

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NoRequestID is the request_id value logged outside of any request.
const NoRequestID = "-"

var (
	setupOnce sync.Once
	// bare is the logger without a request_id field; fielded carries the
	// "-" sentinel so records emitted outside a request stay on contract.
	bare    *zap.Logger
	fielded *zap.Logger
)

// Setup builds the process-wide JSON logger writing to stdout.
//
// The first call decides the minimum level; subsequent calls are no-ops and
// return the existing logger regardless of the level argument. Unknown level
// strings fall back to info.
func Setup(level string) *zap.Logger {
	setupOnce.Do(func() {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			lvl = zapcore.InfoLevel
		}

		encCfg := zapcore.EncoderConfig{
			TimeKey:        "asctime",
			LevelKey:       "levelname",
			NameKey:        "name",
			MessageKey:     "message",
			CallerKey:      zapcore.OmitKey,
			FunctionKey:    zapcore.OmitKey,
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
		}

		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.Lock(os.Stdout),
			lvl,
		)
		bare = zap.New(core)
		fielded = bare.With(zap.String("request_id", NoRequestID))
	})
	return fielded
}

// Get returns the process-wide logger, initializing it at info level if
// Setup has not run yet.
func Get() *zap.Logger {
	return Setup("info")
}

type requestIDKey struct{}

// WithRequestID publishes a request id into ctx for the duration of a
// request. The value is scoped to the derived context: concurrent requests
// each observe their own id, and nothing leaks once the request context is
// discarded.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the ambient request id carried by ctx, or NoRequestID.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
		return v
	}
	return NoRequestID
}

// FromContext returns the process-wide logger enriched with the ambient
// request id from ctx. Call sites name the logger for their component:
//
//	logging.FromContext(ctx).Named("microtrace.worker").Debug("analysis_completed", ...)
func FromContext(ctx context.Context) *zap.Logger {
	Setup("info")
	return bare.With(zap.String("request_id", RequestID(ctx)))
}
