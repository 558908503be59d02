package lock

import (
	"context"
	"sync"
)

// Keyed is an in-process mutex per key. Waiting honours ctx cancellation.
type Keyed struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewKeyed() *Keyed {
	return &Keyed{slots: make(map[string]chan struct{})}
}

func (k *Keyed) Acquire(ctx context.Context, key string) (Release, error) {
	slot := k.slot(key)
	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-slot })
	}, nil
}

// Keys are invoice prefixes and report periods, so the map stays small and is never pruned.
func (k *Keyed) slot(key string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()

	slot, ok := k.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		k.slots[key] = slot
	}
	return slot
}
