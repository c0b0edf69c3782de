package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-overlay/bwoverlay/internal/retry"
)

func TestDo_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	result, err := retry.Do(context.Background(), 3, time.Millisecond, func(ctx context.Context, lastTry bool) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	result, err := retry.Do(context.Background(), 5, time.Millisecond, func(ctx context.Context, lastTry bool) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttemptsAndMarksLastTry(t *testing.T) {
	var sawLastTry bool
	calls := 0
	_, err := retry.Do(context.Background(), 3, time.Millisecond, func(ctx context.Context, lastTry bool) (int, error) {
		calls++
		if lastTry {
			sawLastTry = true
		}
		return 0, errors.New("always fails")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, sawLastTry)
}

func TestDo_NonRetryableErrorStopsImmediately(t *testing.T) {
	calls := 0
	_, err := retry.Do(context.Background(), 5, time.Millisecond, func(ctx context.Context, lastTry bool) (int, error) {
		calls++
		return 0, retry.Final(errors.New("auth invalid"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := retry.Do(ctx, 5, 50*time.Millisecond, func(ctx context.Context, lastTry bool) (int, error) {
		calls++
		if calls == 1 {
			cancel()
		}
		return 0, errors.New("transient")
	})
	require.Error(t, err)
	assert.LessOrEqual(t, calls, 2)
}
