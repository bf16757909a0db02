// Package metrics provides a concurrency-safe OpenTelemetry metrics factory
// with fluent builders, plus the pre-declared instruments recorded by retry
// controllers.
//
// Instruments are created lazily on first use and cached by name. Use
// NewNopFactory when no meter is available.
package metrics
