package lock

import (
	"context"
	"errors"
)

var ErrLockTimeout = errors.New("lock wait timed out")

// Release frees a held lock. It is safe to call exactly once.
type Release func()

// Locker serializes work that shares a key.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// Chain acquires every locker in order and releases them in reverse.
type Chain []Locker

func (c Chain) Acquire(ctx context.Context, key string) (Release, error) {
	releases := make([]Release, 0, len(c))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, locker := range c {
		if locker == nil {
			continue
		}
		release, err := locker.Acquire(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}
