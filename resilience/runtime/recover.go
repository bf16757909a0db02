package runtime

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	constant "github.com/LerianStudio/lib-resilience/resilience/constants"
	rlog "github.com/LerianStudio/lib-resilience/resilience/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Logger defines the minimal logging interface required by runtime.
// It is satisfied by log.Logger.
type Logger interface {
	Log(ctx context.Context, level rlog.Level, msg string, fields ...rlog.Field)
}

// PanicPolicy decides what happens after a panic has been recorded.
type PanicPolicy int

const (
	// KeepRunning swallows the panic after recording it.
	KeepRunning PanicPolicy = iota
	// CrashProcess re-panics after recording it.
	CrashProcess
)

// ErrPanicRecovered is wrapped by errors produced from recovered panics.
var ErrPanicRecovered = errors.New("panic recovered")

// maxPanicValueLength bounds the panic value written to span attributes.
const maxPanicValueLength = 512

// CallWithRecovery runs fn and converts a panic into an error wrapping
// ErrPanicRecovered. The panic is logged and recorded before returning.
func CallWithRecovery(ctx context.Context, logger Logger, component, name string, fn func() error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			HandlePanicValue(ctx, logger, recovered, component, name)

			err = fmt.Errorf("%w: %v", ErrPanicRecovered, recovered)
		}
	}()

	return fn()
}

// RecoverAndLogWithContext recovers a panic in the deferring goroutine and
// records it. Use it as `defer runtime.RecoverAndLogWithContext(...)`.
func RecoverAndLogWithContext(ctx context.Context, logger Logger, component, name string) {
	if recovered := recover(); recovered != nil {
		HandlePanicValue(ctx, logger, recovered, component, name)
	}
}

// HandlePanicValue records a panic value that was already recovered.
func HandlePanicValue(ctx context.Context, logger Logger, panicValue any, component, name string) {
	if panicValue == nil {
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}

	stack := debug.Stack()

	if logger != nil {
		logger.Log(ctx, rlog.LevelError, "panic recovered",
			rlog.String("component", component),
			rlog.String("source", name),
			rlog.String("panic_value", fmt.Sprint(panicValue)),
			rlog.String("stack_trace", string(stack)),
		)
	}

	recordPanicToSpan(ctx, panicValue, component, name)
	recordPanicMetric(ctx, component, name)
}

// SafeGoWithContextAndComponent launches fn on a new goroutine with panic
// recovery governed by policy.
func SafeGoWithContextAndComponent(
	ctx context.Context,
	logger Logger,
	component, name string,
	policy PanicPolicy,
	fn func(ctx context.Context),
) {
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				HandlePanicValue(ctx, logger, recovered, component, name)

				if policy == CrashProcess {
					panic(recovered)
				}
			}
		}()

		fn(ctx)
	}()
}

func recordPanicToSpan(ctx context.Context, panicValue any, component, name string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	value := fmt.Sprint(panicValue)
	if len(value) > maxPanicValueLength {
		value = value[:maxPanicValueLength]
	}

	span.AddEvent(constant.EventPanicRecovered, trace.WithAttributes(
		attribute.String(constant.AttrPrefixPanic+"value", value),
		attribute.String(constant.AttrPrefixPanic+"component", component),
		attribute.String(constant.AttrPrefixPanic+"source", name),
	))
}
