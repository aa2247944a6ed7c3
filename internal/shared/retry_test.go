package shared

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSQLiteConflictError(t *testing.T) {
	assert.False(t, IsSQLiteConflictError(nil))
	assert.True(t, IsSQLiteConflictError(errors.New("exec: SQLITE_BUSY")))
	assert.True(t, IsSQLiteConflictError(errors.New("database is locked (5)")))
	assert.False(t, IsSQLiteConflictError(errors.New("no such table")))
}

func TestRetryOnConflictRetriesBusy(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}, "insert", func() error {
		calls++
		if calls < 3 {
			return errors.New("SQLITE_BUSY")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryOnConflictGivesUp(t *testing.T) {
	calls := 0
	busy := errors.New("database is locked")
	err := RetryOnConflict(context.Background(), RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond}, "update", func() error {
		calls++
		return busy
	})
	require.ErrorIs(t, err, busy)
	assert.Equal(t, 3, calls, "first attempt plus two retries")
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestRetryOnConflictRetryCount(t *testing.T) {
	tests := []struct {
		maxRetries int
		wantCalls  int
	}{
		{maxRetries: -1, wantCalls: 1},
		{maxRetries: 0, wantCalls: 1},
		{maxRetries: 1, wantCalls: 2},
		{maxRetries: 3, wantCalls: 4},
	}
	for _, tt := range tests {
		calls := 0
		err := RetryOnConflict(context.Background(), RetryPolicy{MaxRetries: tt.maxRetries, BaseDelay: time.Millisecond}, "insert", func() error {
			calls++
			return errors.New("SQLITE_BUSY")
		})
		require.Error(t, err)
		assert.Equal(t, tt.wantCalls, calls, "MaxRetries=%d", tt.maxRetries)
	}
}

func TestRetryOnConflictStopsOnOtherErrors(t *testing.T) {
	calls := 0
	boom := errors.New("constraint failed")
	err := RetryOnConflict(context.Background(), DefaultRetryPolicy(), "insert", func() error {
		calls++
		return boom
	})
	assert.Same(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestRetryOnConflictHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryOnConflict(ctx, RetryPolicy{MaxRetries: 5, BaseDelay: time.Second}, "insert", func() error {
		return errors.New("SQLITE_BUSY")
	})
	require.ErrorIs(t, err, context.Canceled)
}
