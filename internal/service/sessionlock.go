package service

import "sync"

// sessionLocks serializes the per-turn read-modify-write for a session.
// Concurrent requests on different sessions proceed independently; two
// requests on the same session id run one after the other, so session state
// updates cannot interleave and lose writes.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// lock acquires the mutex for a session id and returns its unlock function.
// Entries are reference counted so the map does not grow with dead sessions.
func (s *sessionLocks) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}
