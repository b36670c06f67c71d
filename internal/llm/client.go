package llm

import "context"

// Client is the interface every completion provider implements.
//
// Complete is the single contract the router and composer depend on:
// a system instruction, the prior conversation turns, and the current
// user text go in; the model's raw text comes back. Transport and model
// errors are returned as-is; callers decide whether to guard them.
type Client interface {
	// Complete sends one completion request and returns the raw text.
	Complete(ctx context.Context, system string, history []Message, user string) (string, error)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// buildMessages assembles the provider-neutral message list shared by
// all implementations: system instruction first, then history, then the
// current user text.
func buildMessages(system string, history []Message, user string) []Message {
	msgs := make([]Message, 0, len(history)+2)
	if system != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: system})
	}
	msgs = append(msgs, history...)
	msgs = append(msgs, Message{Role: RoleUser, Content: user})
	return msgs
}
