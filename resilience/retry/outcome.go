package retry

import (
	"fmt"
	"time"
)

// Status is the terminal state of a retry sequence.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusGaveUp    Status = "gave_up"
	StatusCancelled Status = "cancelled"
)

// Reason names the ceiling that ended a StatusGaveUp sequence.
type Reason string

const (
	ReasonMaxAttemptsExceeded    Reason = "max_attempts_exceeded"
	ReasonMaxElapsedTimeExceeded Reason = "max_elapsed_time_exceeded"
)

// Outcome is the result of one retry sequence.
type Outcome struct {
	Status   Status
	Reason   Reason // Only set when Status is StatusGaveUp
	Attempts int
	Elapsed  time.Duration
	LastErr  error // Last operation failure, nil on success

	cause error
}

// Succeeded reports whether the operation eventually succeeded.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// Err converts the outcome into an error: nil on success, a *GiveUpError
// when a ceiling was reached, or an error wrapping ErrCancelled and the
// context cause when the sequence was cancelled.
func (o Outcome) Err() error {
	switch o.Status {
	case StatusSuccess:
		return nil
	case StatusGaveUp:
		return &GiveUpError{
			Reason:   o.Reason,
			Attempts: o.Attempts,
			Elapsed:  o.Elapsed,
			LastErr:  o.LastErr,
		}
	case StatusCancelled:
		if o.cause != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, o.cause)
		}

		return ErrCancelled
	default:
		return fmt.Errorf("retry: unknown outcome status %q", o.Status)
	}
}
