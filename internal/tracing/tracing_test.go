package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		ServiceName:    "microtrace-test",
		ServiceVersion: "0.0.0",
		Environment:    "test",
		Endpoint:       "localhost:4317",
		SamplingRate:   1.0,
		ExcludedPaths:  []string{"/metrics"},
	}
}

func TestConfigure_Idempotent(t *testing.T) {
	tr := New(testOptions())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first, err := tr.Configure(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := tr.Configure(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)

	require.NoError(t, tr.Shutdown(ctx))
}

func TestInstrument_Idempotent(t *testing.T) {
	tr := New(testOptions())

	r := chi.NewRouter()
	tr.Instrument(r)
	mounted := len(r.Middlewares())
	tr.Instrument(r)
	assert.Equal(t, mounted, len(r.Middlewares()))
}

func TestShutdown_WithoutConfigure(t *testing.T) {
	tr := New(testOptions())
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestMiddleware_SkipsExcludedPaths(t *testing.T) {
	tr := New(testOptions())

	r := chi.NewRouter()
	tr.Instrument(r)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/other", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/metrics", "/other"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
