package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_Success(t *testing.T) {
	calls := 0
	operation := func() error {
		calls++
		return nil
	}

	err := RetryWithBackoff(context.Background(), operation, 3, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	calls := 0
	operation := func() error {
		calls++
		if calls < 3 {
			return errors.New("transient failure")
		}
		return nil
	}

	err := RetryWithBackoff(context.Background(), operation, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_AllAttemptsFail(t *testing.T) {
	calls := 0
	wantErr := errors.New("persistent failure")
	operation := func() error {
		calls++
		return wantErr
	}

	err := RetryWithBackoff(context.Background(), operation, 3, time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	operation := func() error {
		calls++
		return errors.New("should not be reached")
	}

	err := RetryWithBackoff(ctx, operation, 3, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	err := RetryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}
