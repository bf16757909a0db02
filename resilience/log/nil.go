package log

import "context"

// NopLogger discards every record. The zero value is ready to use and is the
// fallback wherever no logger was injected.
type NopLogger struct{}

var _ Logger = NopLogger{}

// NewNop returns a Logger that discards everything.
//
//nolint:ireturn
func NewNop() Logger {
	return NopLogger{}
}

func (NopLogger) Log(context.Context, Level, string, ...Field) {}

//nolint:ireturn
func (n NopLogger) With(...Field) Logger { return n }

//nolint:ireturn
func (n NopLogger) WithGroup(string) Logger { return n }

// Enabled reports false for every level so callers can skip building fields.
func (NopLogger) Enabled(Level) bool { return false }

func (NopLogger) Sync(context.Context) error { return nil }
