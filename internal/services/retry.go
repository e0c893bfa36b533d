package services

import (
	"context"
	"time"
)

const (
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy is the single backoff policy used for every backend call.
type RetryPolicy struct {
	// MaxAttempts is the total number of calls, including the first one.
	MaxAttempts int
	// BaseDelay is doubled after every failed attempt: 1s, 2s, 4s, ...
	BaseDelay time.Duration
	Retryable func(error) bool
	Sleep     SleepFunc
	OnRetry   func(attempt int, delay time.Duration, err error)
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultRetryAttempts,
		BaseDelay:   DefaultRetryBaseDelay,
		Retryable:   IsRetryable,
		Sleep:       SleepContext,
	}
}

// Delay returns the backoff delay that follows the given (1-based) failed attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay << (attempt - 1)
}

// Retry calls fn until it succeeds, returns a non-retryable error, or the
// attempt budget runs out. It returns the number of attempts made.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context, attempt int) (T, error)) (T, int, error) {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Retryable == nil {
		p.Retryable = IsRetryable
	}
	if p.Sleep == nil {
		p.Sleep = SleepContext
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, attempt - 1, err
		}

		result, err := fn(ctx, attempt)
		if err == nil {
			return result, attempt, nil
		}
		lastErr = err

		if !p.Retryable(err) || attempt == p.MaxAttempts {
			return zero, attempt, err
		}

		delay := p.Delay(attempt)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
			// the backoff would outlive the request budget
			return zero, attempt, err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if err := p.Sleep(ctx, delay); err != nil {
			return zero, attempt, err
		}
	}

	return zero, p.MaxAttempts, lastErr
}

// SleepContext is a cancellable sleep.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
