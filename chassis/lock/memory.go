package lock

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryLock - process-local Lock for tests and single-node runs.
// TTL expiry is simulated with ForceExpire instead of timers.
type MemoryLock struct {
	mu    sync.Mutex
	locks map[string]string
	done  map[string]bool
}

// InitMemoryLock ...
func InitMemoryLock() *MemoryLock {
	return &MemoryLock{
		locks: map[string]string{},
		done:  map[string]bool{},
	}
}

// Acquire ...
func (l *MemoryLock) Acquire(key string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.locks[key]; held {
		return "", ErrBusy
	}
	token := uuid.NewString()
	l.locks[key] = token
	return token, nil
}

// Release ...
func (l *MemoryLock) Release(key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if current, held := l.locks[key]; held && current == token {
		delete(l.locks, key)
	}
	return nil
}

// MarkDone ...
func (l *MemoryLock) MarkDone(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done[key] = true
	return nil
}

// IsDone ...
func (l *MemoryLock) IsDone(key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done[key], nil
}

// ForceExpire drops the lock regardless of owner, as a TTL lapse would.
func (l *MemoryLock) ForceExpire(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, key)
}
