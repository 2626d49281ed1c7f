package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSerialisesSameKey(t *testing.T) {
	l := NewLocal(0)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "resource_lock:r1")
			require.NoError(t, err)
			defer release()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, l.locks, "entries are dropped when idle")
}

func TestLocalDifferentKeysDoNotBlock(t *testing.T) {
	l := NewLocal(50 * time.Millisecond)
	ctx := context.Background()

	r1, err := l.Acquire(ctx, "a")
	require.NoError(t, err)
	defer r1()

	r2, err := l.Acquire(ctx, "b")
	require.NoError(t, err)
	r2()
}

func TestLocalTimeout(t *testing.T) {
	l := NewLocal(20 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "a")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "a")
	assert.ErrorIs(t, err, ErrTimeout)

	release()
	release()

	again, err := l.Acquire(ctx, "a")
	require.NoError(t, err)
	again()
}

func TestAcquireAllSortsAndDeduplicates(t *testing.T) {
	l := NewLocal(20 * time.Millisecond)
	ctx := context.Background()

	release, err := AcquireAll(ctx, l, []string{"c", "a", "b", "a"})
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "b")
	assert.ErrorIs(t, err, ErrTimeout)

	release()

	r, err := l.Acquire(ctx, "b")
	require.NoError(t, err)
	r()
}

func TestAcquireAllReleasesOnFailure(t *testing.T) {
	l := NewLocal(20 * time.Millisecond)
	ctx := context.Background()

	held, err := l.Acquire(ctx, "b")
	require.NoError(t, err)
	defer held()

	_, err = AcquireAll(ctx, l, []string{"a", "b"})
	assert.ErrorIs(t, err, ErrTimeout)

	r, err := l.Acquire(ctx, "a")
	require.NoError(t, err, "a must not stay held after a failed AcquireAll")
	r()
}
