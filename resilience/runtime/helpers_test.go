//go:build unit

package runtime

import (
	"context"
	"sync"

	rlog "github.com/LerianStudio/lib-resilience/resilience/log"
)

type loggedRecord struct {
	level  rlog.Level
	msg    string
	fields map[string]any
}

// recordingLogger captures records for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	records []loggedRecord
}

func (l *recordingLogger) Log(_ context.Context, level rlog.Level, msg string, fields ...rlog.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	values := make(map[string]any, len(fields))
	for _, f := range fields {
		values[f.Key] = f.Value
	}

	l.records = append(l.records, loggedRecord{level: level, msg: msg, fields: values})
}

func (l *recordingLogger) snapshot() []loggedRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]loggedRecord(nil), l.records...)
}
