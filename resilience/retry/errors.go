package retry

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNilOperation is returned when the operation to retry is nil.
	ErrNilOperation = errors.New("retry: operation is nil")
	// ErrNilController is returned when a method is called on a nil *Controller.
	ErrNilController = errors.New("retry: controller is nil")
	// ErrInvalidConfig is returned when a Config field is out of range.
	ErrInvalidConfig = errors.New("retry: invalid configuration")
	// ErrControllerSpent is returned when a controller that already finished a
	// sequence is run again without Reset.
	ErrControllerSpent = errors.New("retry: controller already completed a sequence, call Reset before reuse")
	// ErrSequenceInProgress is returned when a controller is run or reset while
	// its sequence is still running.
	ErrSequenceInProgress = errors.New("retry: sequence already in progress")
	// ErrGaveUp is matched by every *GiveUpError.
	ErrGaveUp = errors.New("retry: gave up")
	// ErrCancelled is returned by Outcome.Err when the sequence was cancelled.
	ErrCancelled = errors.New("retry: cancelled")
)

// ConfigurationError reports a problem with how the controller was invoked.
// No attempt is made and no delay is scheduled when it is returned.
type ConfigurationError struct {
	Field  string
	Detail string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := e.Err.Error()
	if e.Field != "" {
		msg += ": " + e.Field
	}

	if e.Detail != "" {
		msg += " " + e.Detail
	}

	return msg
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

func configurationError(err error) error {
	return &ConfigurationError{Err: err}
}

func invalidConfig(field, detail string) error {
	return &ConfigurationError{Field: field, Detail: detail, Err: ErrInvalidConfig}
}

// GiveUpError describes a sequence that hit one of its ceilings.
// It unwraps to the last operation failure and matches ErrGaveUp.
type GiveUpError struct {
	Reason   Reason
	Attempts int
	Elapsed  time.Duration
	LastErr  error
}

func (e *GiveUpError) Error() string {
	msg := fmt.Sprintf("retry: gave up after %d attempts in %s (%s)", e.Attempts, e.Elapsed, e.Reason)
	if e.LastErr != nil {
		msg += ": " + e.LastErr.Error()
	}

	return msg
}

func (e *GiveUpError) Unwrap() error {
	return e.LastErr
}

// Is matches ErrGaveUp.
func (e *GiveUpError) Is(target error) bool {
	return target == ErrGaveUp
}
