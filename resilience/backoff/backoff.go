package backoff

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	mrand "math/rand/v2"
	"time"
)

// maxShift is the largest exponent for which 1<<n still fits in int64.
const maxShift = 62

// Exponential returns base * 2^attempt, saturating at math.MaxInt64.
// Non-positive bases yield 0; negative attempts are treated as 0.
func Exponential(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}

	shift := min(max(attempt, 0), maxShift)
	factor := int64(1) << shift

	if int64(base) > math.MaxInt64/factor {
		return time.Duration(math.MaxInt64)
	}

	return base * time.Duration(factor)
}

// Scale returns percent/100 of delay, saturating at math.MaxInt64.
// Non-positive delays or percentages yield 0.
func Scale(delay time.Duration, percent float64) time.Duration {
	if delay <= 0 || percent <= 0 || math.IsNaN(percent) {
		return 0
	}

	scaled := float64(delay) * (percent / 100)
	if scaled >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(scaled)
}

// Ceiling returns the jitter ceiling for attempt: (percent/100) * base * 2^attempt.
func Ceiling(base time.Duration, attempt int, percent float64) time.Duration {
	return Scale(Exponential(base, attempt), percent)
}

// FullJitter returns a uniformly random duration in [0, ceiling).
// It draws from crypto/rand and falls back to a seeded math/rand source.
// Non-positive ceilings yield 0.
func FullJitter(ceiling time.Duration) time.Duration {
	if ceiling <= 0 {
		return 0
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(ceiling)))
	if err != nil {
		return time.Duration(fallbackInt64N(int64(ceiling)))
	}

	return time.Duration(n.Int64())
}

// fallbackInt64N draws from a PCG source seeded from crypto/rand. When even
// seeding fails it returns the midpoint so a wait is never skipped entirely.
func fallbackInt64N(ceiling int64) int64 {
	var seed [8]byte

	if _, err := rand.Read(seed[:]); err != nil {
		return ceiling / 2
	}

	rng := mrand.New(mrand.NewPCG(binary.LittleEndian.Uint64(seed[:]), 0)) // #nosec G404 -- crypto/rand unavailable

	return rng.Int64N(ceiling)
}

// Delay draws the full-jitter delay for attempt: uniform in
// [0, (percent/100) * base * 2^attempt).
func Delay(base time.Duration, attempt int, percent float64) time.Duration {
	return FullJitter(Ceiling(base, attempt, percent))
}

// Wait blocks for d or until ctx is done. It returns nil when the full delay
// elapsed and the context error otherwise. The timer is released on return.
func Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context done: %w", err)
	}

	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context done: %w", ctx.Err())
	}
}
