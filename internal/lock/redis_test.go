package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ms-booking/internal/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a Redis client backed by miniredis
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		mr.Close()
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestRedisAcquireAndRelease(t *testing.T) {
	client, mr := setupTestRedis(t)
	l := NewRedis(client, time.Minute, 50*time.Millisecond, logger.Discard())
	ctx := context.Background()
	key := ResourceKey("r1")

	release, err := l.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))

	held, err := l.Held(ctx, key)
	require.NoError(t, err)
	assert.True(t, held)

	_, err = l.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrTimeout)

	release()
	assert.False(t, mr.Exists(key))

	again, err := l.Acquire(ctx, key)
	require.NoError(t, err)
	again()
}

func TestRedisReleaseKeepsForeignLock(t *testing.T) {
	client, mr := setupTestRedis(t)
	l := NewRedis(client, time.Second, 50*time.Millisecond, logger.Discard())
	ctx := context.Background()
	key := ResourceKey("r1")

	release, err := l.Acquire(ctx, key)
	require.NoError(t, err)

	// our lock expires and another instance takes the key
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set(key, "someone-else"))

	release()

	val, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
}

func TestRedisConcurrentAcquire(t *testing.T) {
	client, _ := setupTestRedis(t)
	l := NewRedis(client, time.Minute, 2*time.Second, logger.Discard())
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		inside  int32
		maxSeen int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "resource_lock:shared")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxSeen)
}

func TestRedisAcquireFailsWhenServerDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	l := NewRedis(client, time.Minute, 100*time.Millisecond, logger.Discard())
	mr.Close()

	_, err := l.Acquire(context.Background(), "k")
	assert.Error(t, err)
}
