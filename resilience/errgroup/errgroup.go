package errgroup

import (
	"context"
	"errors"
	"fmt"
	"sync"

	rlog "github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/LerianStudio/lib-resilience/resilience/runtime"
)

const component = "errgroup"

// ErrPanicRecovered is returned when a goroutine in the group panics.
var ErrPanicRecovered = errors.New("errgroup: panic recovered")

// Group runs named goroutines under a shared context. The first failure,
// returned error or recovered panic, cancels that context and is reported
// by Wait. The zero value is usable and never cancels anything.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger rlog.Logger

	wg   sync.WaitGroup
	sem  chan struct{}
	once sync.Once
	err  error
}

// WithContext returns a Group whose context is derived from ctx. That context
// is cancelled on the first failure or when Wait returns.
func WithContext(ctx context.Context) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	groupCtx, cancel := context.WithCancel(ctx)

	return &Group{ctx: groupCtx, cancel: cancel}, groupCtx
}

// SetLogger sets the logger that reports recovered panics.
func (grp *Group) SetLogger(logger rlog.Logger) {
	if grp == nil {
		return
	}

	grp.logger = logger
}

// SetLimit caps the number of goroutines running at once. n <= 0 removes
// the cap. It must be called before the first Go.
func (grp *Group) SetLimit(n int) {
	if grp == nil {
		return
	}

	if n <= 0 {
		grp.sem = nil
		return
	}

	grp.sem = make(chan struct{}, n)
}

// Go runs fn on a new goroutine, blocking first while the limit is reached.
// name identifies the goroutine in panic logs, span events and metrics.
func (grp *Group) Go(name string, fn func() error) {
	if grp.sem != nil {
		grp.sem <- struct{}{}
	}

	grp.wg.Add(1)

	go func() {
		defer grp.release()
		defer func() {
			if recovered := recover(); recovered != nil {
				runtime.HandlePanicValue(grp.context(), grp.logger, recovered, component, name)
				grp.fail(fmt.Errorf("%w in %s: %v", ErrPanicRecovered, name, recovered))
			}
		}()

		if err := fn(); err != nil {
			grp.fail(err)
		}
	}()
}

// Wait blocks until every goroutine returned and yields the first failure.
func (grp *Group) Wait() error {
	grp.wg.Wait()

	if grp.cancel != nil {
		grp.cancel()
	}

	return grp.err
}

func (grp *Group) release() {
	if grp.sem != nil {
		<-grp.sem
	}

	grp.wg.Done()
}

func (grp *Group) fail(err error) {
	grp.once.Do(func() {
		grp.err = err

		if grp.cancel != nil {
			grp.cancel()
		}
	})
}

func (grp *Group) context() context.Context {
	if grp.ctx == nil {
		return context.Background()
	}

	return grp.ctx
}
