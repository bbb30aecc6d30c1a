package service

import "sync"

// sessionLocks serializes operations per session id.
//
// At most one action may be in flight per session: two concurrent
// read-modify-write cycles would both derive the generator for the same
// turn and double-spend its draws, corrupting the damage sequence and
// replayability. Distinct sessions share nothing and proceed in parallel.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire blocks until the caller owns the lock for id and returns the
// release function. Lock entries live for the service lifetime; the map is
// bounded by the number of distinct sessions touched.
func (l *sessionLocks) acquire(id string) func() {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
