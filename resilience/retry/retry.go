package retry

import (
	"context"
	"fmt"

	"github.com/LerianStudio/lib-resilience/resilience"
	"github.com/LerianStudio/lib-resilience/resilience/errgroup"
)

// Do runs op with a fresh controller built from cfg.
func Do(ctx context.Context, cfg Config, op Operation, opts ...Option) (Outcome, error) {
	c, err := New(cfg, opts...)
	if err != nil {
		return Outcome{}, err
	}

	return c.Run(ctx, op)
}

// DoWithResult runs fn under retry and returns the value of the successful
// attempt. On any other outcome the zero value of T is returned. Without
// WithName, the sequence is named after fn.
func DoWithResult[T any](
	ctx context.Context,
	cfg Config,
	fn func(ctx context.Context) (T, error),
	opts ...Option,
) (T, Outcome, error) {
	var result T

	if fn == nil {
		return result, Outcome{}, configurationError(ErrNilOperation)
	}

	outcome, err := Do(ctx, cfg, func(ctx context.Context) error {
		value, opErr := fn(ctx)
		if opErr != nil {
			return opErr
		}

		result = value

		return nil
	}, append([]Option{withDefaultName(symbolName(fn))}, opts...)...)

	return result, outcome, err
}

// DoAll runs every operation in its own retry sequence concurrently and
// returns the outcomes in the order of ops. Sequences are independent: one
// giving up does not cancel the others. All operations are validated before
// any of them starts.
func DoAll(ctx context.Context, cfg Config, ops []Operation, opts ...Option) ([]Outcome, error) {
	return DoAllLimit(ctx, cfg, ops, 0, opts...)
}

// DoAllLimit is DoAll with at most limit sequences running at once.
// A limit <= 0 runs every sequence at the same time.
func DoAllLimit(ctx context.Context, cfg Config, ops []Operation, limit int, opts ...Option) ([]Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for i, op := range ops {
		if op == nil {
			return nil, &ConfigurationError{
				Field:  fmt.Sprintf("ops[%d]", i),
				Detail: "is nil",
				Err:    ErrNilOperation,
			}
		}
	}

	outcomes := make([]Outcome, len(ops))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLogger(resilience.NewLoggerFromContext(ctx))
	group.SetLimit(limit)

	for i, op := range ops {
		group.Go(fmt.Sprintf("retry.DoAll[%d]", i), func() error {
			outcome, err := Do(groupCtx, cfg, op, opts...)
			if err != nil {
				return err
			}

			outcomes[i] = outcome

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return outcomes, fmt.Errorf("retry: run all: %w", err)
	}

	return outcomes, nil
}
