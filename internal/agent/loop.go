// Package agent orchestrates one question/answer cycle: route the
// question, gather context, compose the answer, commit the exchange.
package agent

import (
	"context"
	"log/slog"

	"github.com/netsage/netsage/internal/llm"
	"github.com/netsage/netsage/internal/prompts"
	"github.com/netsage/netsage/internal/router"
	"github.com/netsage/netsage/internal/session"
	"github.com/netsage/netsage/internal/tools"
)

// Retriever answers documentation queries. Satisfied by
// docs.Retriever; nil disables the DOCS action gracefully.
type Retriever interface {
	Retrieve(ctx context.Context, query string) string
}

// Result is the outcome of one completed cycle.
type Result struct {
	Answer   string
	Decision *router.Decision
}

// Loop wires the collaborators for the question cycle.
type Loop struct {
	logger    *slog.Logger
	store     session.Store
	locks     *session.Locks
	router    *router.Router
	registry  *tools.Registry
	retriever Retriever
	client    llm.Client
}

// New creates a loop. retriever may be nil when retrieval is disabled.
func New(logger *slog.Logger, store session.Store, rt *router.Router, registry *tools.Registry, retriever Retriever, client llm.Client) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		logger:    logger,
		store:     store,
		locks:     session.NewLocks(),
		router:    rt,
		registry:  registry,
		retriever: retriever,
		client:    client,
	}
}

// Ask runs one question cycle for a session. The session lock is held
// for the whole cycle so concurrent questions on the same session id
// serialize instead of interleaving their history commits. Completion
// faults (from routing or composing) propagate; tool and retrieval
// faults are folded into the answer.
func (l *Loop) Ask(ctx context.Context, sessionID, question string) (*Result, error) {
	unlock := l.locks.Lock(sessionID)
	defer unlock()

	history := toMessages(l.store.History(sessionID))

	decision, err := l.router.Route(ctx, question, history, l.registry.Catalog())
	if err != nil {
		return nil, err
	}

	var contextText string
	switch decision.Action {
	case router.ActionTool:
		l.logger.Debug("dispatching tool", "session", sessionID,
			"tool", decision.ToolName, "input", decision.ToolInput)
		contextText = l.registry.Execute(ctx, decision.ToolName, decision.ToolInput)

	case router.ActionDocs:
		query := decision.Query
		if query == "" {
			query = question
		}
		l.logger.Debug("searching documentation", "session", sessionID, "query", query)
		if l.retriever == nil {
			contextText = "Documentation search unavailable: retrieval is disabled."
		} else {
			contextText = l.retriever.Retrieve(ctx, query)
		}

	case router.ActionDirect:
		if decision.Answer != "" {
			// The router already answered; commit and skip composition.
			if err := l.store.AppendExchange(sessionID, question, decision.Answer); err != nil {
				return nil, err
			}
			return &Result{Answer: decision.Answer, Decision: decision}, nil
		}
		contextText = prompts.GeneralKnowledge

	default:
		contextText = prompts.GeneralKnowledge
	}

	answer, err := l.client.Complete(ctx, prompts.ComposerSystem, history,
		prompts.ComposerUser(question, contextText))
	if err != nil {
		return nil, err
	}

	if err := l.store.AppendExchange(sessionID, question, answer); err != nil {
		return nil, err
	}

	return &Result{Answer: answer, Decision: decision}, nil
}

// History returns a session's turns.
func (l *Loop) History(sessionID string) []session.Turn {
	return l.store.History(sessionID)
}

// Clear resets a session.
func (l *Loop) Clear(sessionID string) error {
	unlock := l.locks.Lock(sessionID)
	defer unlock()
	return l.store.Clear(sessionID)
}

// Router exposes the routing audit surface.
func (l *Loop) Router() *router.Router {
	return l.router
}

// toMessages converts stored turns into completion messages.
func toMessages(turns []session.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Role == session.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Content})
	}
	return messages
}
