package admission

import (
	"context"
	"sync"
)

// keyedMutex provides per-key exclusive sections. Each key gets its own
// one-slot channel semaphore, so holders of different keys never contend
// and acquisition can be abandoned on context cancellation without any
// partial effect.
type keyedMutex struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{slots: make(map[string]chan struct{})}
}

func (k *keyedMutex) slot(key string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()

	s, ok := k.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		k.slots[key] = s
	}
	return s
}

// lock acquires the exclusive section for key, returning its release
// function. It returns ctx.Err() if the context is done before the section
// is acquired.
func (k *keyedMutex) lock(ctx context.Context, key string) (func(), error) {
	s := k.slot(key)
	select {
	case s <- struct{}{}:
		return func() { <-s }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// forget drops the slot for a key that will not be used again, e.g. after
// event deletion. Safe to call while the slot is unheld.
func (k *keyedMutex) forget(key string) {
	k.mu.Lock()
	delete(k.slots, key)
	k.mu.Unlock()
}
