// Package retry implements the execute_with_retry/last_try contract: a
// function is invoked up to a fixed number of times, told on its final
// attempt that no further retry will follow, and given full discretion over
// whether a given error is worth retrying at all.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Error wraps an attempt's failure with whether retry.Do should try again.
// A function that returns a plain (unwrapped) error is treated as
// retryable by default.
type Error struct {
	Err       error
	Retryable bool
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Final wraps err as a non-retryable failure: Do returns immediately
// without consuming further attempts.
func Final(err error) error {
	return &Error{Err: err, Retryable: false}
}

// Func is one attempt at producing a T. lastTry is true only on call number
// attempts, after which Do makes no further call whatever this attempt
// returns; if Do stops earlier, no call sees lastTry true.
type Func[T any] func(ctx context.Context, lastTry bool) (T, error)

// Do calls fn up to attempts times, waiting an exponentially doubling delay
// between attempts (starting at initialDelay). It stops early if fn returns
// a nil error, a non-retryable *Error, or ctx is cancelled.
func Do[T any](ctx context.Context, attempts int, initialDelay time.Duration, fn Func[T]) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialDelay
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	b.RandomizationFactor = 0
	b.Reset()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastTry := attempt == attempts

		result, err := fn(ctx, lastTry)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var retryErr *Error
		if errors.As(err, &retryErr) && !retryErr.Retryable {
			return zero, err
		}
		if lastTry {
			break
		}

		delay := b.NextBackOff()
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}
