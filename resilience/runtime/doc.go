// Package runtime recovers panics raised by retried operations and by the
// goroutines that drive asynchronous retry sequences.
//
// Recovered panics are logged, recorded as a span event on the active span,
// and counted in panic_recovered_total once InitPanicMetrics has been called.
package runtime
