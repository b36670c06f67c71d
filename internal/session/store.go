package session

import (
	"sync"
	"time"
)

// Store is the interface for session storage.
type Store interface {
	// History returns the turns of a session in order. Unknown ids
	// yield an empty slice, not an error.
	History(id string) []Turn
	// AppendExchange commits one completed question/answer cycle:
	// a human turn followed by an assistant turn.
	AppendExchange(id, question, answer string) error
	// Get retrieves a session by id, or nil if it has no turns yet.
	Get(id string) *Session
	// Clear removes a session.
	Clear(id string) error
	// Stats returns storage statistics.
	Stats() map[string]any
}

// MemoryStore keeps sessions in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	maxTurns int // per session
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(maxTurns int) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = 200
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		maxTurns: maxTurns,
	}
}

// Get retrieves a session by id.
// Returns nil if not found.
func (s *MemoryStore) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}

	// Return a copy to avoid race conditions
	return sess.copy()
}

// History retrieves the turns of a session.
// Returns an empty slice if the session doesn't exist.
func (s *MemoryStore) History(id string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return []Turn{}
	}

	turns := make([]Turn, len(sess.Turns))
	copy(turns, sess.Turns)
	return turns
}

// AppendExchange appends a human turn and an assistant turn as one
// unit, creating the session on first use. Committing both sides
// together keeps the history strictly alternating.
func (s *MemoryStore) AppendExchange(id, question, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{
			ID:        id,
			Turns:     []Turn{},
			CreatedAt: now,
		}
		s.sessions[id] = sess
	}

	sess.Turns = append(sess.Turns,
		Turn{Role: RoleHuman, Content: question, Timestamp: now},
		Turn{Role: RoleAssistant, Content: answer, Timestamp: now},
	)
	sess.UpdatedAt = now

	// Trim oldest exchanges if over max, keeping pairs intact
	if len(sess.Turns) > s.maxTurns {
		drop := len(sess.Turns) - s.maxTurns
		if drop%2 != 0 {
			drop++
		}
		sess.Turns = sess.Turns[drop:]
	}

	return nil
}

// Clear removes a session.
func (s *MemoryStore) Clear(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Stats returns storage statistics.
func (s *MemoryStore) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totalTurns := 0
	for _, sess := range s.sessions {
		totalTurns += len(sess.Turns)
	}

	return map[string]any{
		"sessions":        len(s.sessions),
		"turns":           totalTurns,
		"max_per_session": s.maxTurns,
	}
}
