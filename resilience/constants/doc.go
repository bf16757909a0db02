// Package constant holds telemetry names shared by the resilience packages:
// metric names, span and event names, attribute keys, and label sanitization.
package constant
