package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

// exercise runs n goroutines incrementing a counter under the lock and
// reports the highest number of holders observed at once.
func exercise(t *testing.T, locker billing.SubscriberLocker, n int) int32 {
	t.Helper()
	var inside, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), "member:7:42")
			if !assert.NoError(t, err) {
				return
			}
			cur := inside.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)
			release()
		}()
	}
	wg.Wait()
	return peak.Load()
}

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	locker := NewMemoryLocker()
	assert.Equal(t, int32(1), exercise(t, locker, 20))
	assert.Empty(t, locker.(*MemoryLocker).slots)
}

func TestMemoryLocker_ContextCancelled(t *testing.T) {
	locker := NewMemoryLocker()
	release, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release()

	again, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)
	again()
}

func TestRedisLocker_MutualExclusion(t *testing.T) {
	_, client := setupTestRedis(t)
	locker := NewRedisLocker(client, time.Second, logger.NewLogger())
	assert.Equal(t, int32(1), exercise(t, locker, 10))
}

func TestRedisLocker_ReleaseOnlyOwnToken(t *testing.T) {
	mr, client := setupTestRedis(t)
	locker := NewRedisLocker(client, time.Second, logger.NewLogger())

	release, err := locker.Acquire(context.Background(), "tenant:0:7")
	require.NoError(t, err)
	assert.True(t, mr.Exists("boxdesk:tenant:0:7"))

	// the lock expired and another process took it over
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("boxdesk:tenant:0:7", "someone-else"))

	release()
	got, err := mr.Get("boxdesk:tenant:0:7")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLocker_WaitRespectsContext(t *testing.T) {
	_, client := setupTestRedis(t)
	locker := NewRedisLocker(client, time.Minute, logger.NewLogger())

	release, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
