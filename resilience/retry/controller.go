package retry

import (
	"context"
	"errors"
	"reflect"
	goruntime "runtime"
	"strings"
	"sync"
	"time"

	"github.com/LerianStudio/lib-resilience/resilience"
	"github.com/LerianStudio/lib-resilience/resilience/backoff"
	constant "github.com/LerianStudio/lib-resilience/resilience/constants"
	rlog "github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/LerianStudio/lib-resilience/resilience/opentelemetry/metrics"
	"github.com/LerianStudio/lib-resilience/resilience/runtime"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	componentName        = "retry"
	defaultOperationName = "operation"

	resultSuccess = "success"
	resultFailure = "failure"
)

// Operation is the unit of work retried by a Controller. A non-nil error
// counts as a failure and triggers the next attempt.
type Operation func(ctx context.Context) error

// operationNameKey carries a *string that a Func adapter fills with the
// symbol of the function it wraps instead of calling it.
type operationNameKey struct{}

// Func adapts a zero-argument function to an Operation. A nil fn yields a
// nil Operation so Run still reports ErrNilOperation. Without WithName, the
// sequence is named after fn rather than after the adapter.
//
//go:noinline
func Func(fn func() error) Operation {
	if fn == nil {
		return nil
	}

	return func(ctx context.Context) error {
		if ctx != nil {
			if sink, ok := ctx.Value(operationNameKey{}).(*string); ok {
				*sink = symbolName(fn)
				return nil
			}
		}

		return fn()
	}
}

// funcAdapterPC is the code pointer shared by every Operation built by Func.
var funcAdapterPC = reflect.ValueOf(Func(func() error { return nil })).Pointer()

type controllerState int

const (
	stateIdle controllerState = iota
	stateRunning
	stateDone
)

// Controller drives one retry sequence at a time. Counters and the start
// time belong to the instance, so independent controllers never interfere.
//
// A controller runs a single sequence; call Reset to run another.
type Controller struct {
	cfg Config

	name        string
	defaultName string
	logger      rlog.Logger
	tracer      trace.Tracer
	factory     *metrics.MetricsFactory

	now    func() time.Time
	jitter func(ceiling time.Duration) time.Duration

	mu             sync.Mutex
	state          controllerState
	attempts       int
	firstAttemptAt time.Time
	sequenceID     string
}

// collaborators is the telemetry resolved for a single sequence.
type collaborators struct {
	name    string
	logger  rlog.Logger
	tracer  trace.Tracer
	factory *metrics.MetricsFactory
}

// New validates cfg, fills defaults for zero fields and applies opts.
func New(cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:    cfg.withDefaults(),
		now:    time.Now,
		jitter: backoff.FullJitter,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

// Config returns the resolved configuration.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}

	return c.cfg
}

// Attempts returns the number of invocations made by the current or last sequence.
func (c *Controller) Attempts() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.attempts
}

// SequenceID returns the identifier of the current or last sequence.
func (c *Controller) SequenceID() string {
	if c == nil {
		return ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sequenceID
}

// Reset clears the counters so the controller can run another sequence.
func (c *Controller) Reset() error {
	if c == nil {
		return configurationError(ErrNilController)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateRunning {
		return configurationError(ErrSequenceInProgress)
	}

	c.state = stateIdle
	c.attempts = 0
	c.firstAttemptAt = time.Time{}
	c.sequenceID = ""

	return nil
}

// Run executes op until it succeeds, a ceiling is reached or ctx is done.
// Operation failures never surface as the returned error; they are carried
// by the Outcome. The error is reserved for invalid invocations, in which
// case no attempt is made.
func (c *Controller) Run(ctx context.Context, op Operation) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	sequenceID, err := c.begin(op)
	if err != nil {
		return Outcome{}, err
	}

	return c.run(ctx, op, sequenceID, c.resolve(ctx, op)), nil
}

// Start launches the sequence on a new goroutine and returns immediately.
// The returned Sequence reports the Outcome once the sequence ends.
func (c *Controller) Start(ctx context.Context, op Operation) (*Sequence, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	sequenceID, err := c.begin(op)
	if err != nil {
		return nil, err
	}

	collab := c.resolve(ctx, op)
	seqCtx, cancel := context.WithCancel(ctx)

	seq := &Sequence{
		id:     sequenceID,
		done:   make(chan struct{}),
		cancel: cancel,
	}

	runtime.SafeGoWithContextAndComponent(seqCtx, collab.logger, componentName, "sequence", runtime.KeepRunning,
		func(ctx context.Context) {
			defer close(seq.done)
			defer cancel()

			err := runtime.CallWithRecovery(ctx, collab.logger, componentName, "sequence", func() error {
				seq.outcome = c.run(ctx, op, sequenceID, collab)

				return nil
			})
			if err != nil {
				seq.outcome = Outcome{
					Status:   StatusCancelled,
					Attempts: c.Attempts(),
					Elapsed:  c.now().Sub(c.startClock()),
					cause:    err,
				}
			}
		})

	return seq, nil
}

// begin moves the controller from idle to running.
func (c *Controller) begin(op Operation) (string, error) {
	if c == nil {
		return "", configurationError(ErrNilController)
	}

	if op == nil {
		return "", configurationError(ErrNilOperation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateRunning:
		return "", configurationError(ErrSequenceInProgress)
	case stateDone:
		return "", configurationError(ErrControllerSpent)
	}

	c.state = stateRunning
	c.attempts = 0
	c.firstAttemptAt = time.Time{}
	c.sequenceID = newSequenceID()

	return c.sequenceID, nil
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.state = stateDone
	c.mu.Unlock()
}

// resolve picks each collaborator from the options, then the context, then
// the package defaults.
func (c *Controller) resolve(ctx context.Context, op Operation) collaborators {
	tracking := resilience.NewTrackingFromContext(ctx)

	collab := collaborators{
		name:    c.name,
		logger:  tracking.Logger,
		tracer:  tracking.Tracer,
		factory: tracking.MetricFactory,
	}

	if collab.name == "" {
		collab.name = c.defaultName
	}

	if collab.name == "" {
		collab.name = operationName(op)
	}

	if c.logger != nil {
		collab.logger = c.logger
	}

	if c.tracer != nil {
		collab.tracer = c.tracer
	}

	if c.factory != nil {
		collab.factory = c.factory
	}

	return collab
}

// markAttempt bumps the attempt counter right before an invocation.
func (c *Controller) markAttempt() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attempts++

	return c.attempts
}

// startClock pins the first-attempt time once per sequence.
func (c *Controller) startClock() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.firstAttemptAt.IsZero() {
		c.firstAttemptAt = c.now()
	}

	return c.firstAttemptAt
}

func (c *Controller) run(ctx context.Context, op Operation, sequenceID string, collab collaborators) Outcome {
	defer c.finish()

	cfg := c.cfg
	logger := collab.logger.With(
		rlog.String("operation", collab.name),
		rlog.String("sequence_id", sequenceID),
	)

	ctx, span := collab.tracer.Start(ctx, constant.SpanRetrySequence, trace.WithAttributes(
		attribute.String(constant.AttrRetryOperation, collab.name),
		attribute.String(constant.AttrRetrySequenceID, sequenceID),
	))
	defer span.End()

	logger.Log(ctx, rlog.LevelInfo, "retry sequence started",
		rlog.Millis("backoff_base_ms", cfg.BaseBackoff),
		rlog.Int("max_attempts", cfg.MaxAttempts),
		rlog.Millis("max_elapsed_ms", cfg.MaxElapsed),
		rlog.Float64("jitter_percent", cfg.JitterPercent),
	)

	startedAt := c.startClock()

	var (
		attempts int
		lastErr  error
	)

	for {
		elapsed := c.now().Sub(startedAt)

		if elapsed > cfg.MaxElapsed {
			return c.giveUp(ctx, span, logger, collab, ReasonMaxElapsedTimeExceeded, attempts, elapsed, lastErr)
		}

		if attempts >= cfg.MaxAttempts {
			return c.giveUp(ctx, span, logger, collab, ReasonMaxAttemptsExceeded, attempts, elapsed, lastErr)
		}

		if err := ctx.Err(); err != nil {
			return c.cancelled(ctx, span, logger, collab, attempts, elapsed, lastErr, context.Cause(ctx))
		}

		attempts = c.markAttempt()

		logger.Log(ctx, rlog.LevelDebug, "attempting operation", rlog.Int("attempt", attempts))

		err := runtime.CallWithRecovery(ctx, logger, componentName, collab.name, func() error {
			return op(ctx)
		})
		if err == nil {
			c.recordAttempt(ctx, logger, collab, resultSuccess)

			return c.succeeded(ctx, span, logger, collab, attempts, c.now().Sub(startedAt))
		}

		lastErr = err
		c.recordAttempt(ctx, logger, collab, resultFailure)

		if attempts >= cfg.MaxAttempts {
			logger.Log(ctx, rlog.LevelWarn, "attempt failed",
				rlog.Int("attempt", attempts),
				rlog.Int("attempts_remaining", 0),
				rlog.Err(err),
			)

			span.AddEvent(constant.EventRetryAttemptFailed, trace.WithAttributes(
				attribute.Int(constant.AttrRetryAttempt, attempts),
				attribute.String(constant.AttrRetryError, err.Error()),
			))

			return c.giveUp(ctx, span, logger, collab, ReasonMaxAttemptsExceeded, attempts, c.now().Sub(startedAt), lastErr)
		}

		delay := c.jitter(backoff.Ceiling(cfg.BaseBackoff, attempts, cfg.JitterPercent))

		logger.Log(ctx, rlog.LevelWarn, "attempt failed",
			rlog.Int("attempt", attempts),
			rlog.Millis("delay_ms", delay),
			rlog.Int("attempts_remaining", cfg.MaxAttempts-attempts),
			rlog.Err(err),
		)

		span.AddEvent(constant.EventRetryAttemptFailed, trace.WithAttributes(
			attribute.Int(constant.AttrRetryAttempt, attempts),
			attribute.Int64(constant.AttrRetryDelayMillis, delay.Milliseconds()),
			attribute.String(constant.AttrRetryError, err.Error()),
		))

		if metricErr := collab.factory.RecordRetryDelay(ctx, collab.name, delay.Milliseconds()); metricErr != nil {
			logger.Log(ctx, rlog.LevelDebug, "failed to record retry delay metric", rlog.Err(metricErr))
		}

		if err := backoff.Wait(ctx, delay); err != nil {
			return c.cancelled(ctx, span, logger, collab, attempts, c.now().Sub(startedAt), lastErr, context.Cause(ctx))
		}
	}
}

func (c *Controller) succeeded(
	ctx context.Context,
	span trace.Span,
	logger rlog.Logger,
	collab collaborators,
	attempts int,
	elapsed time.Duration,
) Outcome {
	outcome := Outcome{Status: StatusSuccess, Attempts: attempts, Elapsed: elapsed}

	logger.Log(ctx, rlog.LevelInfo, "retry sequence succeeded",
		rlog.Int("attempts", attempts),
		rlog.Millis("elapsed_ms", elapsed),
	)

	c.closeSpan(span, outcome)
	c.recordOutcome(ctx, logger, collab, outcome)

	return outcome
}

func (c *Controller) giveUp(
	ctx context.Context,
	span trace.Span,
	logger rlog.Logger,
	collab collaborators,
	reason Reason,
	attempts int,
	elapsed time.Duration,
	lastErr error,
) Outcome {
	outcome := Outcome{
		Status:   StatusGaveUp,
		Reason:   reason,
		Attempts: attempts,
		Elapsed:  elapsed,
		LastErr:  lastErr,
	}

	fields := []rlog.Field{
		rlog.String("reason", string(reason)),
		rlog.Int("attempts", attempts),
		rlog.Millis("elapsed_ms", elapsed),
	}
	if lastErr != nil {
		fields = append(fields, rlog.Err(lastErr))
	}

	logger.Log(ctx, rlog.LevelWarn, "retry ceiling reached, giving up", fields...)

	c.closeSpan(span, outcome)
	c.recordOutcome(ctx, logger, collab, outcome)

	return outcome
}

func (c *Controller) cancelled(
	ctx context.Context,
	span trace.Span,
	logger rlog.Logger,
	collab collaborators,
	attempts int,
	elapsed time.Duration,
	lastErr error,
	cause error,
) Outcome {
	outcome := Outcome{
		Status:   StatusCancelled,
		Attempts: attempts,
		Elapsed:  elapsed,
		LastErr:  lastErr,
		cause:    cause,
	}

	logger.Log(ctx, rlog.LevelInfo, "retry sequence cancelled",
		rlog.Int("attempts", attempts),
		rlog.Millis("elapsed_ms", elapsed),
	)

	c.closeSpan(span, outcome)
	c.recordOutcome(ctx, logger, collab, outcome)

	return outcome
}

func (c *Controller) closeSpan(span trace.Span, outcome Outcome) {
	span.SetAttributes(
		attribute.String(constant.AttrRetryStatus, string(outcome.Status)),
		attribute.Int(constant.AttrRetryAttempts, outcome.Attempts),
		attribute.Int64(constant.AttrRetryElapsedMillis, outcome.Elapsed.Milliseconds()),
	)

	if outcome.Reason != "" {
		span.SetAttributes(attribute.String(constant.AttrRetryReason, string(outcome.Reason)))
	}

	switch outcome.Status {
	case StatusSuccess:
		span.SetStatus(codes.Ok, "")
	default:
		err := outcome.Err()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// recordOutcome uses a context detached from cancellation so cancelled
// sequences are still counted.
func (c *Controller) recordOutcome(ctx context.Context, logger rlog.Logger, collab collaborators, outcome Outcome) {
	err := collab.factory.RecordRetryOutcome(context.WithoutCancel(ctx), collab.name, string(outcome.Status), string(outcome.Reason))
	if err != nil {
		logger.Log(ctx, rlog.LevelDebug, "failed to record retry outcome metric", rlog.Err(err))
	}
}

func (c *Controller) recordAttempt(ctx context.Context, logger rlog.Logger, collab collaborators, result string) {
	if err := collab.factory.RecordRetryAttempt(ctx, collab.name, result); err != nil {
		logger.Log(ctx, rlog.LevelDebug, "failed to record retry attempt metric", rlog.Err(err))
	}
}

func newSequenceID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

// operationName derives a readable name for op. Operations built by Func
// report the function they wrap; anything else is named after its own
// symbol.
func operationName(op Operation) string {
	if op == nil {
		return defaultOperationName
	}

	if reflect.ValueOf(op).Pointer() == funcAdapterPC {
		var name string

		_ = op(context.WithValue(context.Background(), operationNameKey{}, &name))

		if name != "" {
			return name
		}
	}

	return symbolName(op)
}

// symbolName trims the package path from fn's symbol,
// e.g. "github.com/acme/svc/db.(*Pool).Ping-fm" becomes "db.(*Pool).Ping".
func symbolName(fn any) string {
	value := reflect.ValueOf(fn)
	if value.Kind() != reflect.Func || value.IsNil() {
		return defaultOperationName
	}

	symbol := goruntime.FuncForPC(value.Pointer())
	if symbol == nil {
		return defaultOperationName
	}

	name := symbol.Name()
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	name = strings.TrimSuffix(name, "-fm")
	if name == "" {
		return defaultOperationName
	}

	return name
}

// IsConfigurationError reports whether err came from an invalid invocation.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError

	return errors.As(err, &cfgErr)
}
