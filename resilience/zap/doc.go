// Package zap adapts go.uber.org/zap to the resilience log.Logger interface.
//
// Use New to build an environment-profiled JSON logger that also forwards
// records to the OpenTelemetry logs bridge, or Wrap to adopt an existing
// *zap.Logger owned by the application.
package zap
