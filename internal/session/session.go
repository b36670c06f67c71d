// Package session provides conversation history storage keyed by session id.
package session

import (
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Immutable once stored.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session holds the state of a single conversation. Turns alternate
// strictly human, assistant, starting with human; the length is even
// after every completed question/answer cycle.
type Session struct {
	ID        string    `json:"id"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Session) copy() *Session {
	turns := make([]Turn, len(s.Turns))
	copy(turns, s.Turns)
	return &Session{
		ID:        s.ID,
		Turns:     turns,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
