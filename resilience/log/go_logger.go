package log

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
)

// logControlCharReplacer escapes control characters that can be used for log injection (CWE-117).
var logControlCharReplacer = strings.NewReplacer(
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func sanitizeLogString(s string) string {
	return logControlCharReplacer.Replace(s)
}

// GoLogger is a Logger on top of the standard library logger.
//
// Records are rendered as `[level] group.msg key=value ...`. String values
// and messages are sanitized to prevent log injection.
type GoLogger struct {
	Level  Level
	out    *stdlog.Logger
	fields []Field
	group  string
}

// Compile-time assertion: *GoLogger implements Logger.
var _ Logger = (*GoLogger)(nil)

// NewGoLogger creates a GoLogger writing to w at the given verbosity.
// A nil writer falls back to stderr.
func NewGoLogger(w io.Writer, level Level) *GoLogger {
	if w == nil {
		w = os.Stderr
	}

	return &GoLogger{
		Level: level,
		out:   stdlog.New(w, "", stdlog.LstdFlags),
	}
}

// Enabled reports whether records at level pass the logger's verbosity ceiling.
func (l *GoLogger) Enabled(level Level) bool {
	if l == nil {
		return false
	}

	return l.Level >= level
}

// Log renders and writes a record when level is enabled.
func (l *GoLogger) Log(_ context.Context, level Level, msg string, fields ...Field) {
	if !l.Enabled(level) {
		return
	}

	l.writer().Print(l.render(level, msg, fields))
}

// With returns a child logger carrying additional fields.
//
//nolint:ireturn
func (l *GoLogger) With(fields ...Field) Logger {
	if l == nil {
		return &GoLogger{}
	}

	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)

	return &GoLogger{Level: l.Level, out: l.out, fields: merged, group: l.group}
}

// WithGroup returns a child logger whose messages are prefixed with name.
//
//nolint:ireturn
func (l *GoLogger) WithGroup(name string) Logger {
	if l == nil {
		return &GoLogger{}
	}

	group := name
	if l.group != "" {
		group = l.group + "." + name
	}

	return &GoLogger{Level: l.Level, out: l.out, fields: l.fields, group: group}
}

// Sync is a no-op; the standard logger writes synchronously.
func (l *GoLogger) Sync(_ context.Context) error { return nil }

func (l *GoLogger) writer() *stdlog.Logger {
	if l.out == nil {
		return stdlog.Default()
	}

	return l.out
}

func (l *GoLogger) render(level Level, msg string, fields []Field) string {
	var b strings.Builder

	b.WriteString("[")
	b.WriteString(level.String())
	b.WriteString("] ")

	if l.group != "" {
		b.WriteString(l.group)
		b.WriteString(".")
	}

	b.WriteString(sanitizeLogString(msg))

	for _, f := range append(append([]Field(nil), l.fields...), fields...) {
		b.WriteString(" ")
		b.WriteString(sanitizeLogString(f.Key))
		b.WriteString("=")
		b.WriteString(renderValue(f.Value))
	}

	return b.String()
}

func renderValue(value any) string {
	switch v := value.(type) {
	case string:
		return sanitizeLogString(v)
	case error:
		if v == nil {
			return "<nil>"
		}

		return sanitizeLogString(v.Error())
	default:
		return sanitizeLogString(fmt.Sprint(v))
	}
}
