// Package log defines the logging interface used across lib-resilience and
// typed fields for structured records.
//
// Adapters (such as the zap package) implement Logger so the retry controller
// and its helpers keep logging calls consistent across backends. GoLogger is a
// dependency-free fallback on top of the standard library logger.
package log
