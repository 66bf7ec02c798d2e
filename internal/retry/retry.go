// Package retry provides a fixed-delay retry wrapper for the pipeline's
// external calls. Every error is treated as retryable; the wrapper reports
// the final attempt's error when the budget is exhausted.
package retry

import (
	"context"
	"time"
)

// Policy controls how many times an operation runs and how long the pipeline
// waits between attempts.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Do runs op until it succeeds or the policy's attempts are exhausted. The
// delay between attempts is fixed. Context cancellation aborts both in-flight
// waits and further attempts, returning the context error.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if err := wait(ctx, policy.Delay); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// Run is Do for operations with no result value.
func Run(ctx context.Context, policy Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
