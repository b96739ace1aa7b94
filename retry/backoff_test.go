package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/memeflow/types"
)

func fastPolicy(maxRetries int) *Policy {
	return &Policy{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestBackoffRetryer_SucceedsFirstTry(t *testing.T) {
	r := NewBackoffRetryer(fastPolicy(3), zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestBackoffRetryer_RetriesRetryableErrors(t *testing.T) {
	r := NewBackoffRetryer(fastPolicy(3), zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return types.NewError(types.ErrRateLimit, "slow down").WithRetryable(true)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestBackoffRetryer_StopsOnNonRetryable(t *testing.T) {
	r := NewBackoffRetryer(fastPolicy(5), zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return types.NewError(types.ErrInvalidInput, "bad prompt")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestBackoffRetryer_ExhaustsRetries(t *testing.T) {
	r := NewBackoffRetryer(fastPolicy(2), zap.NewNop())

	calls := 0
	wantErr := types.NewError(types.ErrUpstreamError, "boom").WithRetryable(true)
	err := r.Do(context.Background(), func() error {
		calls++
		return wantErr
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls) // 1 次原始 + 2 次重试
	assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
}

func TestBackoffRetryer_ContextCancelled(t *testing.T) {
	r := NewBackoffRetryer(&Policy{MaxRetries: 3, InitialDelay: time.Minute}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Do(ctx, func() error {
		return types.NewError(types.ErrUpstreamError, "boom").WithRetryable(true)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNoRetry(t *testing.T) {
	calls := 0
	err := NoRetry().Do(context.Background(), func() error {
		calls++
		return types.NewError(types.ErrUpstreamError, "boom").WithRetryable(true)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
