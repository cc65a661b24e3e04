package memory

import "sync"

// UserLocks serializes pipeline runs per user id so rapid double-submits
// from the same user cannot interleave their memory appends. Locks are
// created lazily and kept for the process lifetime; the per-user footprint
// is one mutex.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewUserLocks() *UserLocks {
	return &UserLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the mutex for userID, creating it on first use.
func (l *UserLocks) Lock(userID string) {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
}

// Unlock releases the mutex for userID.
func (l *UserLocks) Unlock(userID string) {
	l.mu.Lock()
	m := l.locks[userID]
	l.mu.Unlock()

	if m != nil {
		m.Unlock()
	}
}
