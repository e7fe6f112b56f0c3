package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisRateLimiter struct {
	client *redis.Client
	now    func() time.Time
	seq    atomic.Uint64
}

func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		now:    time.Now,
	}
}

// Allow records the call and reports whether every configured window still
// has room. Denied calls are recorded too, so a caller hammering the API stays
// throttled.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, config RateLimitConfig) (bool, error) {
	now := l.now()

	windows := []struct {
		duration time.Duration
		limit    int
	}{
		{time.Minute, config.RequestsPerMinute},
		{time.Hour, config.RequestsPerHour},
	}

	for _, window := range windows {
		if window.limit <= 0 {
			continue
		}
		count, err := l.record(ctx, key, window.duration, now)
		if err != nil {
			return false, err
		}
		if count >= int64(window.limit) {
			return false, nil
		}
	}
	return true, nil
}

// record trims the window, counts what is left and adds this call. It returns
// the count before the call.
func (l *RedisRateLimiter) record(ctx context.Context, key string, window time.Duration, now time.Time) (int64, error) {
	redisKey := l.windowKey(key, window)
	nowNano := now.UnixNano()
	member := fmt.Sprintf("%d-%d", nowNano, l.seq.Add(1))

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(now.Add(-window).UnixNano(), 10))
	zcard := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowNano), Member: member})
	pipe.Expire(ctx, redisKey, window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to record call: %w", err)
	}
	return zcard.Val(), nil
}

func (l *RedisRateLimiter) Used(ctx context.Context, key string, window time.Duration) (int64, error) {
	redisKey := l.windowKey(key, window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(l.now().Add(-window).UnixNano(), 10))
	zcard := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to count calls: %w", err)
	}
	return zcard.Val(), nil
}

func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	keys := []string{l.windowKey(key, time.Minute), l.windowKey(key, time.Hour)}
	if err := l.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset %s: %w", key, err)
	}
	return nil
}

func (l *RedisRateLimiter) windowKey(identifier string, window time.Duration) string {
	return fmt.Sprintf("boxdesk:ratelimit:%s:%s", identifier, window)
}
