//go:build unit

package resilience

import (
	"bytes"
	"context"
	"testing"

	rlog "github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/LerianStudio/lib-resilience/resilience/opentelemetry/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewLoggerFromContext_DefaultsToNop(t *testing.T) {
	t.Parallel()

	logger := NewLoggerFromContext(context.Background())

	require.NotNil(t, logger)
	assert.IsType(t, rlog.NopLogger{}, logger)
}

func TestContextWithLogger_RoundTrip(t *testing.T) {
	t.Parallel()

	logger := rlog.NewGoLogger(&bytes.Buffer{}, rlog.LevelInfo)
	ctx := ContextWithLogger(context.Background(), logger)

	assert.Same(t, logger, NewLoggerFromContext(ctx))
}

func TestContextWithLogger_TypedNilFallsBack(t *testing.T) {
	t.Parallel()

	var typedNil *rlog.GoLogger

	ctx := ContextWithLogger(context.Background(), typedNil)

	assert.IsType(t, rlog.NopLogger{}, NewLoggerFromContext(ctx))
}

func TestContextWith_DoesNotMutateParent(t *testing.T) {
	t.Parallel()

	parentLogger := rlog.NewGoLogger(&bytes.Buffer{}, rlog.LevelInfo)
	parent := ContextWithLogger(context.Background(), parentLogger)

	factory := metrics.NewNopFactory()
	child := ContextWithMetricFactory(parent, factory)
	_ = ContextWithLogger(child, rlog.NewNop())

	assert.Same(t, parentLogger, NewLoggerFromContext(parent))
	assert.Same(t, parentLogger, NewLoggerFromContext(child))
	assert.Same(t, factory, NewTrackingFromContext(child).MetricFactory)
	assert.NotSame(t, factory, NewTrackingFromContext(parent).MetricFactory)
}

func TestNewTrackingFromContext_Defaults(t *testing.T) {
	t.Parallel()

	tracking := NewTrackingFromContext(context.Background())

	assert.NotNil(t, tracking.Logger)
	assert.NotNil(t, tracking.Tracer)
	assert.NotNil(t, tracking.MetricFactory)
}

func TestNewTrackingFromContext_CarriedTracer(t *testing.T) {
	t.Parallel()

	tracer := sdktrace.NewTracerProvider().Tracer("carried")
	ctx := ContextWithTracer(context.Background(), tracer)

	assert.Equal(t, tracer, NewTrackingFromContext(ctx).Tracer)
}

func TestNewLoggerFromContext_NilContext(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // nil context must not panic
	assert.NotNil(t, NewLoggerFromContext(nil))
}
