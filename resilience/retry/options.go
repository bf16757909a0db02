package retry

import (
	"time"

	"github.com/LerianStudio/lib-resilience/resilience/internal/nilcheck"
	rlog "github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/LerianStudio/lib-resilience/resilience/opentelemetry/metrics"
	"go.opentelemetry.io/otel/trace"
)

// Option mutates controller collaborators at construction.
type Option func(*Controller)

// WithLogger sets the logger used for sequence records. Without it the
// logger carried by the run context is used, else a no-op logger.
func WithLogger(logger rlog.Logger) Option {
	return func(c *Controller) {
		if !nilcheck.IsNil(logger) {
			c.logger = logger
		}
	}
}

// WithMetricsFactory sets the factory used to record retry metrics.
func WithMetricsFactory(factory *metrics.MetricsFactory) Option {
	return func(c *Controller) {
		if factory != nil {
			c.factory = factory
		}
	}
}

// WithTracer sets the tracer that opens the retry.sequence span.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Controller) {
		if !nilcheck.IsNil(tracer) {
			c.tracer = tracer
		}
	}
}

// WithName sets the operation name used in logs, spans and metric labels.
// The default is derived from the operation's function symbol.
func WithName(name string) Option {
	return func(c *Controller) {
		if name != "" {
			c.name = name
		}
	}
}

// withDefaultName names the sequence when WithName was not given.
func withDefaultName(name string) Option {
	return func(c *Controller) {
		if name != "" {
			c.defaultName = name
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func withJitter(jitter func(ceiling time.Duration) time.Duration) Option {
	return func(c *Controller) {
		if jitter != nil {
			c.jitter = jitter
		}
	}
}
