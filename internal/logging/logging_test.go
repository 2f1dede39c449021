package logging

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Idempotent(t *testing.T) {
	first := Setup("debug")
	second := Setup("error")

	require.NotNil(t, first)
	// The second call must not build a second sink: same logger back.
	assert.Same(t, first, second)
	assert.Same(t, first, Get())
}

func TestRequestID_Sentinel(t *testing.T) {
	assert.Equal(t, NoRequestID, RequestID(context.Background()))
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", RequestID(ctx))

	// The parent context stays untouched.
	assert.Equal(t, NoRequestID, RequestID(context.Background()))
}

func TestRequestID_EmptyFallsBackToSentinel(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	assert.Equal(t, NoRequestID, RequestID(ctx))
}

func TestRequestID_ConcurrentIsolation(t *testing.T) {
	ids := []string{"req-1", "req-2", "req-3", "req-4"}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := WithRequestID(context.Background(), id)
			for range 100 {
				if got := RequestID(ctx); got != id {
					t.Errorf("request id leaked: got %q, want %q", got, id)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestFromContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "xyz")
	log := FromContext(ctx)
	require.NotNil(t, log)

	// Loggers for different requests must be distinct instances.
	other := FromContext(WithRequestID(context.Background(), "uvw"))
	assert.NotSame(t, log, other)
}
