// Package locks provides a mutex keyed by entity ID, used to serialize
// the short read-modify-write critical sections on a single table session
// or shift without a process-wide lock.
package locks

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyMutex hands out one mutex per key. Entries are dropped once the last
// holder unlocks, so the map does not grow with the number of historical keys.
type KeyMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewKeyMutex creates an empty KeyMutex.
func NewKeyMutex() *KeyMutex {
	return &KeyMutex{entries: make(map[string]*entry)}
}

// Lock acquires the mutex for key and returns the unlock function.
//
//	unlock := km.Lock("table:" + tableID)
//	defer unlock()
func (k *KeyMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
