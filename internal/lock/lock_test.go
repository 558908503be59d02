package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedSerializesSameKey(t *testing.T) {
	locker := NewKeyed()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "T")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestKeyedIndependentKeys(t *testing.T) {
	locker := NewKeyed()
	ctx := context.Background()

	releaseT, err := locker.Acquire(ctx, "T")
	require.NoError(t, err)
	defer releaseT()

	releaseR, err := locker.Acquire(ctx, "R")
	require.NoError(t, err)
	releaseR()
}

func TestKeyedHonoursCancellation(t *testing.T) {
	locker := NewKeyed()

	release, err := locker.Acquire(context.Background(), "T")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "T")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestKeyedReleaseIsIdempotent(t *testing.T) {
	locker := NewKeyed()
	release, err := locker.Acquire(context.Background(), "T")
	require.NoError(t, err)
	release()
	release()

	again, err := locker.Acquire(context.Background(), "T")
	require.NoError(t, err)
	again()
}

type failingLocker struct{}

func (failingLocker) Acquire(context.Context, string) (Release, error) {
	return nil, errors.New("unavailable")
}

func TestChainReleasesOnFailure(t *testing.T) {
	keyed := NewKeyed()
	chain := Chain{keyed, failingLocker{}}

	_, err := chain.Acquire(context.Background(), "T")
	require.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	release, err := keyed.Acquire(ctx, "T")
	require.NoError(t, err)
	release()
}

func TestRedisTryLockWithoutClient(t *testing.T) {
	var l *Redis
	_, ok, err := l.TryLock(context.Background(), "k", time.Second)
	assert.False(t, ok)
	assert.Error(t, err)
	assert.NoError(t, l.Unlock(context.Background(), "k", "token"))
	assert.Nil(t, NewRedis(nil, "", time.Second, nil))
}
