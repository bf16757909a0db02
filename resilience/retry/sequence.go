package retry

import "context"

// Sequence is a handle to a retry sequence launched with Controller.Start.
type Sequence struct {
	id      string
	done    chan struct{}
	cancel  context.CancelFunc
	outcome Outcome
}

// ID returns the sequence identifier attached to its logs and span.
func (s *Sequence) ID() string {
	return s.id
}

// Done is closed once the sequence reaches a terminal outcome.
func (s *Sequence) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the sequence ends and returns its outcome. A sequence
// aborted by a panic outside the operation ends with StatusCancelled and an
// Err wrapping runtime.ErrPanicRecovered.
func (s *Sequence) Wait() Outcome {
	<-s.done

	return s.outcome
}

// Cancel stops the sequence. A pending delay is abandoned and no further
// attempt is made. An attempt already in flight observes cancellation through
// its context. Cancel is safe to call more than once and after completion.
func (s *Sequence) Cancel() {
	s.cancel()
}
