// Package retry provides bounded retry with a fixed delay between attempts.
package retry

import (
	"context"
	"errors"
	"time"
)

// Config holds retry configuration.
type Config struct {
	MaxAttempts int           // Total attempts including the first (<=0 means 1)
	Wait        time.Duration // Fixed delay between attempts

	// OnRetry, if set, is called before each delay with the attempt that failed.
	OnRetry func(attempt int, err error)
}

// DefaultConfig returns the policy the migration tool has always used:
// three attempts, five seconds apart.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Wait:        5 * time.Second,
	}
}

// RetryableError wraps an error that should be retried.
type RetryableError struct {
	Err error
}

func (e RetryableError) Error() string {
	return e.Err.Error()
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error should be retried.
func IsRetryable(err error) bool {
	var retryable RetryableError
	return errors.As(err, &retryable)
}

// Retryable wraps an error to mark it as retryable.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return RetryableError{Err: err}
}

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return e.Err.Error()
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do executes fn until it succeeds, returns a non-retryable error, or the
// attempts run out. Non-retryable errors are returned unwrapped; retryable
// ones have the RetryableError marker stripped.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult executes fn with retries and returns a result.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var result T

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		r, err := fn()
		if err == nil {
			return r, nil
		}

		var retryable RetryableError
		if !errors.As(err, &retryable) {
			return result, err
		}
		lastErr = retryable.Err

		if attempt == attempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr)
		}

		if err := sleep(ctx, cfg.Wait); err != nil {
			return result, err
		}
	}

	return result, &ExhaustedError{Attempts: attempts, Err: lastErr}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
