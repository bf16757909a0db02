// Package backoff computes retry delays: exponential growth of a base unit,
// scaling by a jitter percentage, and a full-jitter uniform draw below the
// resulting ceiling.
//
// For attempt n the ceiling is (jitterPercent/100) * base * 2^n and the
// delay is drawn uniformly from [0, ceiling). Use Wait to sleep for a delay
// while honouring context cancellation.
package backoff
