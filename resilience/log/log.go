package log

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the structured logging interface consumed by the retry controller.
type Logger interface {
	Log(ctx context.Context, level Level, msg string, fields ...Field)
	With(fields ...Field) Logger
	WithGroup(name string) Logger
	Enabled(level Level) bool
	Sync(ctx context.Context) error
}

// Level represents the severity of a log entry.
//
// Lower numeric values indicate higher severity (LevelError=0 is most severe,
// LevelDebug=3 is least). A logger's Level acts as a verbosity ceiling: a
// logger at LevelInfo emits Error, Warn and Info records and drops Debug.
type Level uint8

// Level constants, most severe first.
const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelNames = [...]string{
	LevelError: "error",
	LevelWarn:  "warn",
	LevelInfo:  "info",
	LevelDebug: "debug",
}

func (level Level) String() string {
	if int(level) < len(levelNames) {
		return levelNames[level]
	}

	return "unknown"
}

// ParseLevel accepts the names produced by String plus "warning", ignoring
// case and surrounding blanks.
func ParseLevel(lvl string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(lvl))
	if name == "warning" {
		return LevelWarn, nil
	}

	for level, candidate := range levelNames {
		if candidate == name {
			return Level(level), nil
		}
	}

	return LevelInfo, fmt.Errorf("not a valid Level: %q", lvl)
}

// UnmarshalText lets Level be decoded from configuration text.
func (level *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}

	*level = parsed

	return nil
}

// MarshalText encodes Level as its name.
func (level Level) MarshalText() ([]byte, error) {
	return []byte(level.String()), nil
}

// Field is a strongly-typed key/value attribute attached to a log event.
type Field struct {
	Key   string
	Value any
}

// Any creates a field with an arbitrary value.
//
// Prefer the typed constructors; values passed here are logged as-is.
func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates a 64-bit integer field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a floating point field.
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Millis creates an integer field holding d in whole milliseconds.
func Millis(key string, d time.Duration) Field {
	return Field{Key: key, Value: d.Milliseconds()}
}

// Err creates the conventional `error` field.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}
