//go:build unit

package retry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	rlog "github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/LerianStudio/lib-resilience/resilience/opentelemetry/metrics"
	rzap "github.com/LerianStudio/lib-resilience/resilience/zap"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errTransient = errors.New("transient failure")

// fakeClock is advanced by the jitter hook so elapsed time is deterministic.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)
}

// delayRecorder captures every ceiling handed to the jitter hook and
// returns a fixed real delay.
type delayRecorder struct {
	mu       sync.Mutex
	ceilings []time.Duration
	delay    time.Duration
	clock    *fakeClock
}

func (r *delayRecorder) jitter(ceiling time.Duration) time.Duration {
	r.mu.Lock()
	r.ceilings = append(r.ceilings, ceiling)
	r.mu.Unlock()

	if r.clock != nil {
		r.clock.Advance(ceiling)
	}

	return r.delay
}

func (r *delayRecorder) Ceilings() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]time.Duration(nil), r.ceilings...)
}

// failingOp fails the first failures invocations and succeeds afterwards.
// A negative failures value never succeeds.
func failingOp(failures int32, calls *atomic.Int32) Operation {
	return func(context.Context) error {
		n := calls.Add(1)
		if failures < 0 || n <= failures {
			return errTransient
		}

		return nil
	}
}

func newObservedLogger(t *testing.T, level zapcore.Level) (rlog.Logger, *observer.ObservedLogs) {
	t.Helper()

	core, observed := observer.New(level)

	return rzap.Wrap(zap.New(core)), observed
}

func newTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	return provider, recorder
}

func newTestMetrics(t *testing.T) (*metrics.MetricsFactory, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	factory, err := metrics.NewMetricsFactory(provider.Meter("retry-test"), rlog.NewNop())
	require.NoError(t, err)

	return factory, reader
}

func collectMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}

	return nil
}

func mustController(t *testing.T, cfg Config, opts ...Option) *Controller {
	t.Helper()

	ctrl, err := New(cfg, opts...)
	require.NoError(t, err)

	return ctrl
}
