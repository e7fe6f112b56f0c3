// Package lock provides the per-subscriber locks that serialize ledger mutations.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	"github.com/boxdesk/boxdesk/internal/shared/config"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

const (
	defaultLockTTL   = 30 * time.Second
	retryInterval    = 25 * time.Millisecond
	maxRetryInterval = 250 * time.Millisecond
	releaseTimeout   = 2 * time.Second
	lockKeyNamespace = "boxdesk:"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds subscriber locks in Redis with SET NX PX, which serializes
// mutations across server and worker processes.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger logger.Interface) billing.SubscriberLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

// NewRedisClient creates the Redis client and verifies the connection.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	key = lockKeyNamespace + key
	token := uuid.NewString()
	wait := retryInterval

	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			l.logger.Errorw("failed to acquire subscriber lock", "key", key, "error", err)
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if acquired {
			return func() { l.release(key, token) }, nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("waiting for lock %s: %w", key, ctx.Err())
		case <-timer.C:
		}
		if wait *= 2; wait > maxRetryInterval {
			wait = maxRetryInterval
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		// the TTL still frees the key
		l.logger.Warnw("failed to release subscriber lock", "key", key, "error", err)
	}
}
