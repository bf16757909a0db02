package constant

// TelemetrySDKName identifies this library as the OTEL instrumentation scope.
const TelemetrySDKName = "lib-resilience/opentelemetry"

// MaxMetricLabelLength is the maximum length for metric labels to prevent cardinality explosion.
const MaxMetricLabelLength = 64

// Telemetry attribute key prefixes.
const (
	// AttrPrefixRetry is the prefix for retry sequence attributes.
	AttrPrefixRetry = "retry."
	// AttrPrefixPanic is the prefix for panic event attributes.
	AttrPrefixPanic = "panic."
)

// Retry span attribute keys.
const (
	AttrRetryOperation     = AttrPrefixRetry + "operation"
	AttrRetrySequenceID    = AttrPrefixRetry + "sequence_id"
	AttrRetryAttempt       = AttrPrefixRetry + "attempt"
	AttrRetryAttempts      = AttrPrefixRetry + "attempts"
	AttrRetryDelayMillis   = AttrPrefixRetry + "delay_ms"
	AttrRetryStatus        = AttrPrefixRetry + "status"
	AttrRetryReason        = AttrPrefixRetry + "reason"
	AttrRetryElapsedMillis = AttrPrefixRetry + "elapsed_ms"
	AttrRetryError         = AttrPrefixRetry + "error"
)

// Telemetry metric names.
const (
	// MetricRetryAttemptsTotal counts operation invocations made by retry controllers.
	MetricRetryAttemptsTotal = "retry_attempts_total"
	// MetricRetryOutcomesTotal counts terminal outcomes of retry sequences.
	MetricRetryOutcomesTotal = "retry_outcomes_total"
	// MetricRetryBackoffDelay records the drawn delay before each retry, in milliseconds.
	MetricRetryBackoffDelay = "retry_backoff_delay"
	// MetricPanicRecoveredTotal is the counter metric for recovered panics.
	MetricPanicRecoveredTotal = "panic_recovered_total"
)

// Telemetry span and event names.
const (
	// SpanRetrySequence wraps one retry sequence from first attempt to terminal outcome.
	SpanRetrySequence = "retry.sequence"
	// EventRetryAttemptFailed is recorded on the sequence span for every failed attempt.
	EventRetryAttemptFailed = "retry.attempt.failed"
	// EventPanicRecovered is the span event name for recovered panics.
	EventPanicRecovered = "panic.recovered"
)

// SanitizeMetricLabel truncates a label value to MaxMetricLabelLength
// to prevent metric cardinality explosion in OTEL backends.
func SanitizeMetricLabel(value string) string {
	if len(value) > MaxMetricLabelLength {
		return value[:MaxMetricLabelLength]
	}

	return value
}
