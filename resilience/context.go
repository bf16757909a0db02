package resilience

import (
	"context"

	constant "github.com/LerianStudio/lib-resilience/resilience/constants"
	"github.com/LerianStudio/lib-resilience/resilience/internal/nilcheck"
	rlog "github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/LerianStudio/lib-resilience/resilience/opentelemetry/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type trackingContextKey struct{}

// TrackingComponents groups the telemetry collaborators carried on a context.
type TrackingComponents struct {
	Logger        rlog.Logger
	Tracer        trace.Tracer
	MetricFactory *metrics.MetricsFactory
}

func componentsFrom(ctx context.Context) TrackingComponents {
	if ctx == nil {
		return TrackingComponents{}
	}

	if values, ok := ctx.Value(trackingContextKey{}).(TrackingComponents); ok {
		return values
	}

	return TrackingComponents{}
}

// ContextWithLogger returns a copy of ctx carrying logger.
func ContextWithLogger(ctx context.Context, logger rlog.Logger) context.Context {
	values := componentsFrom(ctx)
	values.Logger = logger

	return context.WithValue(ctx, trackingContextKey{}, values)
}

// ContextWithTracer returns a copy of ctx carrying tracer.
func ContextWithTracer(ctx context.Context, tracer trace.Tracer) context.Context {
	values := componentsFrom(ctx)
	values.Tracer = tracer

	return context.WithValue(ctx, trackingContextKey{}, values)
}

// ContextWithMetricFactory returns a copy of ctx carrying factory.
func ContextWithMetricFactory(ctx context.Context, factory *metrics.MetricsFactory) context.Context {
	values := componentsFrom(ctx)
	values.MetricFactory = factory

	return context.WithValue(ctx, trackingContextKey{}, values)
}

// NewLoggerFromContext returns the logger carried by ctx, or a no-op logger.
//
//nolint:ireturn
func NewLoggerFromContext(ctx context.Context) rlog.Logger {
	return resolveLogger(componentsFrom(ctx).Logger)
}

// NewTrackingFromContext returns the collaborators carried by ctx with
// defaults for anything missing: a no-op logger, the global tracer and a
// factory on the global meter provider.
func NewTrackingFromContext(ctx context.Context) TrackingComponents {
	values := componentsFrom(ctx)

	return TrackingComponents{
		Logger:        resolveLogger(values.Logger),
		Tracer:        resolveTracer(values.Tracer),
		MetricFactory: resolveMetricFactory(values.MetricFactory),
	}
}

func resolveLogger(logger rlog.Logger) rlog.Logger {
	if nilcheck.IsNil(logger) {
		return rlog.NewNop()
	}

	return logger
}

func resolveTracer(tracer trace.Tracer) trace.Tracer {
	if nilcheck.IsNil(tracer) {
		return otel.Tracer(constant.TelemetrySDKName)
	}

	return tracer
}

func resolveMetricFactory(factory *metrics.MetricsFactory) *metrics.MetricsFactory {
	if factory != nil {
		return factory
	}

	defaultFactory, err := metrics.NewMetricsFactory(otel.GetMeterProvider().Meter(constant.TelemetrySDKName), rlog.NewNop())
	if err != nil {
		return metrics.NewNopFactory()
	}

	return defaultFactory
}
