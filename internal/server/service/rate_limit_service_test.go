package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live server when REDIS_TEST_URL is set
func TestRedisRateLimiter(t *testing.T) {
	uri := os.Getenv("REDIS_TEST_URL")
	if uri == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	key := "rate_limit_test:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, key) })

	now := time.Now()
	limiter := NewRedisRateLimiter(client, func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	})

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
	}
	allowed, err := limiter.Allow(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	now = now.Add(2 * time.Minute)
	allowed, err = limiter.Allow(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
