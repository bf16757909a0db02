// Package errgroup runs goroutines that share a cancellation context and
// converts panics into errors instead of crashing the process.
//
// It backs retry.DoAll, where every operation gets its own retry sequence and
// a panic in one goroutine must not take the others down silently.
package errgroup
