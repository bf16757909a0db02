package metrics

import (
	"context"

	constant "github.com/LerianStudio/lib-resilience/resilience/constants"
)

// Pre-configured retry controller instruments.
var (
	// MetricRetryAttempts counts operation invocations by outcome of the attempt.
	MetricRetryAttempts = Metric{
		Name:        constant.MetricRetryAttemptsTotal,
		Unit:        "1",
		Description: "Number of operation attempts made by retry controllers.",
	}

	// MetricRetryOutcomes counts terminal retry sequence outcomes.
	MetricRetryOutcomes = Metric{
		Name:        constant.MetricRetryOutcomesTotal,
		Unit:        "1",
		Description: "Number of retry sequences that reached a terminal outcome.",
	}

	// MetricRetryBackoffDelay records the jittered delay scheduled before each retry.
	MetricRetryBackoffDelay = Metric{
		Name:        constant.MetricRetryBackoffDelay,
		Unit:        "ms",
		Description: "Randomized backoff delay scheduled before the next attempt.",
		Buckets:     DefaultDelayBuckets,
	}
)

// RecordRetryAttempt counts one attempt of operation; result is "success" or "failure".
func (f *MetricsFactory) RecordRetryAttempt(ctx context.Context, operation, result string) error {
	b, err := f.Counter(MetricRetryAttempts)
	if err != nil {
		return err
	}

	return b.WithLabels(map[string]string{
		"operation": constant.SanitizeMetricLabel(operation),
		"result":    result,
	}).AddOne(ctx)
}

// RecordRetryOutcome counts one terminal outcome. reason is empty unless the sequence gave up.
func (f *MetricsFactory) RecordRetryOutcome(ctx context.Context, operation, status, reason string) error {
	b, err := f.Counter(MetricRetryOutcomes)
	if err != nil {
		return err
	}

	return b.WithLabels(map[string]string{
		"operation": constant.SanitizeMetricLabel(operation),
		"status":    status,
		"reason":    reason,
	}).AddOne(ctx)
}

// RecordRetryDelay records a scheduled backoff delay in milliseconds.
func (f *MetricsFactory) RecordRetryDelay(ctx context.Context, operation string, delayMillis int64) error {
	b, err := f.Histogram(MetricRetryBackoffDelay)
	if err != nil {
		return err
	}

	return b.WithLabels(map[string]string{
		"operation": constant.SanitizeMetricLabel(operation),
	}).Record(ctx, delayMillis)
}
