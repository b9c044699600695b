package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kanso/internal/service"
)

func fastRetry() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("%w: flaky", ErrSheetsConnection)
		}
		return nil
	}, fastRetry())

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryStopsOnNonRetryableError(t *testing.T) {
	permanent := &RetryableError{
		Err:       fmt.Errorf("%w: sheet gone", ErrSheetNotFound),
		Retryable: false,
	}

	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return permanent
	}, fastRetry())

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, errors.Is(err, ErrSheetNotFound))
	assert.False(t, errors.Is(err, ErrMaxRetries))
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return fmt.Errorf("%w: still down", ErrSheetsConnection)
	}, fastRetry())

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, errors.Is(err, ErrMaxRetries))
}

func TestWithRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return fmt.Errorf("%w: down", ErrSheetsConnection)
	}, fastRetry())

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
