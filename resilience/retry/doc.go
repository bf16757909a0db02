// Package retry executes operations with automatic retry, exponential
// backoff and full jitter.
//
// Each attempt n (1-indexed) that fails schedules a delay drawn uniformly
// from [0, (JitterPercent/100) * BaseBackoff * 2^n). A sequence ends with
// StatusSuccess on the first successful attempt, StatusGaveUp once
// MaxAttempts invocations were made or MaxElapsed passed since the first
// attempt, or StatusCancelled when its context is done.
//
// Every failure is retried; the package does not classify errors.
//
// A Controller owns its counters and start time, so independent sequences
// never share state:
//
//	ctrl, err := retry.New(retry.DefaultConfig(), retry.WithName("db.ping"))
//	if err != nil {
//		return err
//	}
//
//	outcome, err := ctrl.Run(ctx, pool.Ping)
//	if err != nil {
//		return err // invalid invocation, no attempt was made
//	}
//
//	return outcome.Err()
//
// Logs, the retry.sequence span and the retry_* metrics are emitted through
// the collaborators set with options or carried on the context (see
// resilience.ContextWithLogger).
package retry
