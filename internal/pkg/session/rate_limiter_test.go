package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) *RateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiter(client)
}

func TestCheckLoginAttemptWithinLimit(t *testing.T) {
	rl := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < maxLoginAttempts; i++ {
		allowed, remaining, err := rl.CheckLoginAttempt(ctx, "127.0.0.1", "a@example.com")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, int64(maxLoginAttempts-i-1), remaining)
	}
}

func TestCheckLoginAttemptBlocksAfterLimit(t *testing.T) {
	rl := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < maxLoginAttempts; i++ {
		_, _, err := rl.CheckLoginAttempt(ctx, "127.0.0.1", "a@example.com")
		require.NoError(t, err)
	}

	allowed, remaining, err := rl.CheckLoginAttempt(ctx, "127.0.0.1", "a@example.com")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, int64(0), remaining)
}

func TestRateLimitIsPerIPAndEmail(t *testing.T) {
	rl := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i <= maxLoginAttempts; i++ {
		rl.CheckLoginAttempt(ctx, "127.0.0.1", "a@example.com")
	}

	allowed, _, err := rl.CheckLoginAttempt(ctx, "10.0.0.1", "a@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestResetLoginAttempts(t *testing.T) {
	rl := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i <= maxLoginAttempts; i++ {
		rl.CheckLoginAttempt(ctx, "127.0.0.1", "a@example.com")
	}

	require.NoError(t, rl.ResetLoginAttempts(ctx, "127.0.0.1", "a@example.com"))

	remaining, err := rl.RemainingAttempts(ctx, "127.0.0.1", "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(maxLoginAttempts), remaining)
}
