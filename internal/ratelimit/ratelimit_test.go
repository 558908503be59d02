package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/sevadesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledLimiterAllows(t *testing.T) {
	limiter, err := NewReportLimiter(nil, config.Config{})
	require.NoError(t, err)
	assert.Nil(t, limiter)
	assert.False(t, limiter.Enabled())

	res, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestEnabledLimiterNeedsRedis(t *testing.T) {
	_, err := NewReportLimiter(nil, config.Config{RateLimit: config.RateLimitConfig{Enabled: true, ReportRate: 1, ReportBurst: 1}})
	assert.Error(t, err)

	_, err = NewReportLimiter(nil, config.Config{
		Redis:     config.RedisConfig{Addr: "localhost:6379"},
		RateLimit: config.RateLimitConfig{Enabled: true},
	})
	assert.Error(t, err)
}

func TestTokenBucketRejectsBadInput(t *testing.T) {
	var bucket *TokenBucket
	res, err := bucket.Allow(context.Background(), "k", 1, 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, res.Allowed)
	assert.Nil(t, NewTokenBucket(nil))
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, time.Second, defaultBucketTTL(0, 1))
	assert.Equal(t, 12*time.Second, defaultBucketTTL(0.5, 3))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
}

func TestCasts(t *testing.T) {
	assert.Equal(t, int64(1), castToInt(int64(1)))
	assert.Equal(t, int64(2), castToInt(2.9))
	assert.Equal(t, int64(7), castToInt("7"))
	assert.Equal(t, 2.5, castToFloat("2.5"))
	assert.Equal(t, float64(0), castToFloat("x"))
	assert.Equal(t, float64(3), castToFloat(int64(3)))
}

func TestTokenBucketSpendsBurstThenDenies(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	bucket := NewTokenBucket(client)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := bucket.Allow(ctx, "bucket", 0.1, 2)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}

	res, err := bucket.Allow(ctx, "bucket", 0.1, 2)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 2, res.Limit)
	assert.Greater(t, res.RetryAfter, 5*time.Second)
	assert.LessOrEqual(t, res.RetryAfter, 10*time.Second)
	assert.True(t, mr.Exists("bucket"))
}

func TestReportLimiterKeysPerClient(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewReportLimiter(nil, config.Config{
		Redis:     config.RedisConfig{Addr: mr.Addr()},
		RateLimit: config.RateLimitConfig{Enabled: true, ReportRate: 0.1, ReportBurst: 1},
	})
	require.NoError(t, err)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.True(t, mr.Exists("sevadesk:ratelimit:report:10.0.0.2"))
}
