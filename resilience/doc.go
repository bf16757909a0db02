// Package resilience carries the telemetry collaborators used by the retry
// controller (logger, tracer and metrics factory) on a context.Context.
//
// Typical usage at service start-up:
//
//	ctx = resilience.ContextWithLogger(ctx, logger)
//	ctx = resilience.ContextWithTracer(ctx, tracer)
//	ctx = resilience.ContextWithMetricFactory(ctx, factory)
//
// The retry controller falls back to these values when no explicit option
// overrides them. The fault-tolerance primitives live in subpackages:
// retry (controller) and backoff (delay computation).
package resilience
