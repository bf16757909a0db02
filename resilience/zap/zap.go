package zap

import (
	"context"

	rlog "github.com/LerianStudio/lib-resilience/resilience/log"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured zap logger that implements log.Logger.
type Logger struct {
	logger      *zap.Logger
	atomicLevel zap.AtomicLevel
}

// Compile-time assertion: *Logger implements rlog.Logger.
var _ rlog.Logger = (*Logger)(nil)

// Wrap adopts an existing zap logger. A nil logger yields a no-op adapter.
// The returned level handle reports the wrapped core's minimum level; changing
// it does not reconfigure a logger built elsewhere.
func Wrap(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Logger{logger: logger, atomicLevel: zap.NewAtomicLevelAt(logger.Level())}
}

func (l *Logger) must() *zap.Logger {
	if l == nil || l.logger == nil {
		return zap.NewNop()
	}

	return l.logger
}

// Log dispatches to the matching zap level. When ctx carries a valid span
// context, trace_id and span_id are appended so records correlate with the
// retry sequence span.
func (l *Logger) Log(ctx context.Context, level rlog.Level, msg string, fields ...rlog.Field) {
	zapFields := toZapFields(fields)

	if ctx != nil {
		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
			zapFields = append(zapFields,
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
	}

	if ce := l.must().Check(toZapLevel(level), msg); ce != nil {
		ce.Write(zapFields...)
	}
}

// With returns a child logger with additional structured fields.
//
//nolint:ireturn
func (l *Logger) With(fields ...rlog.Field) rlog.Logger {
	return &Logger{
		logger:      l.must().With(toZapFields(fields)...),
		atomicLevel: l.Level(),
	}
}

// WithGroup returns a child logger that nests subsequent fields under name.
//
//nolint:ireturn
func (l *Logger) WithGroup(name string) rlog.Logger {
	return &Logger{
		logger:      l.must().With(zap.Namespace(name)),
		atomicLevel: l.Level(),
	}
}

// Enabled reports whether the logger would emit a record at level.
func (l *Logger) Enabled(level rlog.Level) bool {
	return l.must().Core().Enabled(toZapLevel(level))
}

// Sync flushes buffered records, giving up when ctx is done first.
func (l *Logger) Sync(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)

	go func() {
		done <- l.must().Sync()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Raw returns the underlying zap logger.
func (l *Logger) Raw() *zap.Logger {
	return l.must()
}

// Level returns the runtime-adjustable level handle for this logger.
func (l *Logger) Level() zap.AtomicLevel {
	if l == nil {
		return zap.NewAtomicLevel()
	}

	return l.atomicLevel
}

func toZapLevel(level rlog.Level) zapcore.Level {
	switch level {
	case rlog.LevelDebug:
		return zapcore.DebugLevel
	case rlog.LevelWarn:
		return zapcore.WarnLevel
	case rlog.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields []rlog.Field) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields))

	for _, f := range fields {
		if err, ok := f.Value.(error); ok && f.Key == "error" {
			zapFields = append(zapFields, zap.Error(err))
			continue
		}

		zapFields = append(zapFields, zap.Any(f.Key, f.Value))
	}

	return zapFields
}
