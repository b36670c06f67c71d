package session

import "sync"

// Locks serializes question/answer cycles per session id. Two
// concurrent cycles on the same session would interleave their reads
// of history and their commits; holding the session lock for the whole
// cycle keeps the transcript strictly alternating.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocks creates an empty lock set.
func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the exclusive lock for a session id, creating it on
// first use. The returned function releases it.
func (l *Locks) Lock(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
