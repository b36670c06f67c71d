// Package llm provides completion-service client implementations.
package llm

import (
	"time"

	"github.com/netsage/netsage/internal/config"
)

// LevelTrace is below Debug, used for wire-level payload logging.
// The level itself lives in config so ParseLogLevel and the providers
// can never disagree on it.
const LevelTrace = config.LevelTrace

// Message roles as the completion providers understand them.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message for the completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the unified response from any completion provider.
// All fields use proper Go types; wire format conversion happens
// at provider boundaries (ollama.go, anthropic.go).
type ChatResponse struct {
	Model     string
	CreatedAt time.Time
	Message   Message
	Done      bool

	// Token usage (provider-neutral)
	InputTokens  int
	OutputTokens int

	// Timing (populated when available)
	TotalDuration time.Duration
	EvalDuration  time.Duration
}
