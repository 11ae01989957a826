package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponential_SuccessImmediate(t *testing.T) {
	calls := 0
	err := Exponential(context.Background(), func() error {
		calls++
		return nil
	}, ExponentialConfig{InitialInterval: time.Millisecond, MaxRetries: 3})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExponential_RetryThenSuccess(t *testing.T) {
	var calls, onRetry int

	err := Exponential(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, ExponentialConfig{
		InitialInterval: time.Millisecond,
		MaxRetries:      5,
		OnRetry: func(error, time.Duration) {
			onRetry++
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, onRetry)
}

func TestExponential_StopsAfterMaxRetries(t *testing.T) {
	calls := 0
	boom := errors.New("boom")

	err := Exponential(context.Background(), func() error {
		calls++
		return boom
	}, ExponentialConfig{InitialInterval: time.Millisecond, MaxRetries: 2})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestExponential_ZeroRetriesIsSingleAttempt(t *testing.T) {
	calls := 0
	err := Exponential(context.Background(), func() error {
		calls++
		return errors.New("fail")
	}, ExponentialConfig{InitialInterval: time.Millisecond})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExponential_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	bad := errors.New("bad request")

	err := Exponential(context.Background(), func() error {
		calls++
		return Permanent(bad)
	}, ExponentialConfig{InitialInterval: time.Millisecond, MaxRetries: 5})

	assert.ErrorIs(t, err, bad)
	assert.Equal(t, 1, calls)
}

func TestExponential_InvalidInterval(t *testing.T) {
	err := Exponential(context.Background(), func() error { return nil }, ExponentialConfig{})
	assert.Error(t, err)
}
