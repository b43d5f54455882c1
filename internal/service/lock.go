package service

import (
	"fmt"
	"sync"
)

// keyedMutex serializes work per key. Used so two concurrent add-to-cart
// requests for the same (session, product) pair cannot both pass a stock
// check before either mutation lands; distinct pairs proceed in parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

func addLockKey(sessionID string, productID int64) string {
	return fmt.Sprintf("%s/%d", sessionID, productID)
}

// Lock acquires the mutex for key and returns its unlock function. Entries
// are reference-counted and removed when the last holder releases.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
