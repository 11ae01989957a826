package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Burst(t *testing.T) {
	// 10 rps, 5 tokens in bucket
	rl := New(10, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		waited, err := rl.Wait(ctx)
		require.NoError(t, err, "token %d", i+1)
		assert.Less(t, waited, 50*time.Millisecond)
	}

	waited, err := rl.Wait(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, waited, 80*time.Millisecond)
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	rl := New(1, 1)
	_, err := rl.Wait(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = rl.Wait(ctx)
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	tests := []struct {
		name             string
		rps, burst       int
		wantRPS, wantBur int
	}{
		{"zero", 0, 0, 1, 1},
		{"burst defaults to rps", 25, 0, 25, 25},
		{"explicit", 10, 40, 10, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rps, burst := New(tt.rps, tt.burst).Limit()
			assert.Equal(t, tt.wantRPS, rps)
			assert.Equal(t, tt.wantBur, burst)
		})
	}
}
