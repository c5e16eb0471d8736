package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fastConfig(retries *int) Config {
	return Config{
		MaxAttempts: 3,
		Wait:        time.Millisecond,
		OnRetry: func(int, error) {
			*retries++
		},
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	var retries, calls int
	err := Do(context.Background(), fastConfig(&retries), func() error {
		calls++
		if calls < 3 {
			return Retryable(errBoom)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retries, "two delays between three attempts")
}

func TestDo_Exhausted(t *testing.T) {
	var retries, calls int
	err := Do(context.Background(), fastConfig(&retries), func() error {
		calls++
		return Retryable(errBoom)
	})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, IsRetryable(err), "marker must be stripped from the final error")
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retries)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	var retries, calls int
	err := Do(context.Background(), fastConfig(&retries), func() error {
		calls++
		return errBoom
	})

	assert.Same(t, errBoom, err)
	assert.Equal(t, 1, calls)
	assert.Zero(t, retries)
}

func TestDoWithResult_ReturnsValue(t *testing.T) {
	var retries int
	calls := 0
	got, err := DoWithResult(context.Background(), fastConfig(&retries), func() (string, error) {
		calls++
		if calls == 1 {
			return "", Retryable(errBoom)
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, retries)
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{
		MaxAttempts: 3,
		Wait:        time.Hour,
		OnRetry:     func(int, error) { cancel() },
	}

	err := Do(ctx, cfg, func() error { return Retryable(errBoom) })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Wait)
}
