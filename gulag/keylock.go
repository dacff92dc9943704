package gulag

import (
	"sync"
	"time"
)

// keyLock serializes impose/lift for the same (guild, user) while letting
// unrelated keys proceed.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]bool
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]bool)}
}

func (l *keyLock) Lock(key string) {
	for {
		l.mu.Lock()
		if held, ok := l.locks[key]; !ok || !held {
			l.locks[key] = true
			l.mu.Unlock()
			return
		}
		l.mu.Unlock()

		time.Sleep(time.Millisecond * 25)
	}
}

func (l *keyLock) Unlock(key string) {
	l.mu.Lock()
	delete(l.locks, key)
	l.mu.Unlock()
}
