// Package router turns a user question into a routing decision by
// asking the model for a fixed-format text reply and parsing it.
package router

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/netsage/netsage/internal/llm"
	"github.com/netsage/netsage/internal/prompts"
)

// Action identifies what the router decided to do.
type Action string

const (
	ActionTool   Action = "TOOL"
	ActionDocs   Action = "DOCS"
	ActionDirect Action = "DIRECT"
	// ActionMalformed means the reply carried no recognizable action.
	// Callers treat it like a direct answer with no content.
	ActionMalformed Action = "MALFORMED"
)

// Decision records what the model chose and why, for the audit log.
type Decision struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`

	Action    Action `json:"action"`
	ToolName  string `json:"tool_name,omitempty"`
	ToolInput string `json:"tool_input,omitempty"`
	Query     string `json:"query,omitempty"`
	Answer    string `json:"answer,omitempty"`

	// Raw is the unparsed model reply, kept for Explain.
	Raw       string `json:"raw"`
	LatencyMs int64  `json:"latency_ms"`
}

// Stats tracks routing statistics.
type Stats struct {
	TotalRequests int64            `json:"total_requests"`
	ActionCounts  map[string]int64 `json:"action_counts"`
	AvgLatencyMs  int64            `json:"avg_latency_ms"`
}

// Router asks the completion backend to classify each question.
type Router struct {
	client      llm.Client
	logger      *slog.Logger
	maxAuditLog int

	mu             sync.RWMutex
	auditLog       []Decision
	stats          Stats
	totalLatencyMs int64
}

// New creates a router. maxAuditLog bounds the in-memory decision
// history (default 1000).
func New(client llm.Client, logger *slog.Logger, maxAuditLog int) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAuditLog <= 0 {
		maxAuditLog = 1000
	}
	return &Router{
		client:      client,
		logger:      logger,
		maxAuditLog: maxAuditLog,
		auditLog:    make([]Decision, 0, maxAuditLog),
		stats: Stats{
			ActionCounts: make(map[string]int64),
		},
	}
}

// Route classifies one question given the session history and the
// current tool catalog. Completion faults propagate to the caller;
// unparseable replies do not, they come back as ActionMalformed.
func (r *Router) Route(ctx context.Context, question string, history []llm.Message, catalog string) (*Decision, error) {
	start := time.Now()

	raw, err := r.client.Complete(ctx, prompts.RouterSystem(catalog), history, question)
	if err != nil {
		return nil, err
	}

	decision := Parse(raw)
	decision.RequestID = uuid.NewString()
	decision.Timestamp = start
	decision.LatencyMs = time.Since(start).Milliseconds()

	r.record(decision)

	r.logger.Info("question routed",
		"request_id", decision.RequestID,
		"action", decision.Action,
		"tool", decision.ToolName,
		"latency_ms", decision.LatencyMs,
	)
	r.logger.Log(ctx, llm.LevelTrace, "router raw reply", "raw", raw)

	return &decision, nil
}

// Parse extracts a decision from the model's line-oriented reply.
// Each line is split on the first colon; recognized keys fill the
// decision and everything else is ignored. A missing or unknown
// ACTION yields ActionMalformed.
func Parse(raw string) Decision {
	d := Decision{Action: ActionMalformed, Raw: raw}

	for _, line := range strings.Split(raw, "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "ACTION":
			switch Action(strings.ToUpper(value)) {
			case ActionTool, ActionDocs, ActionDirect:
				d.Action = Action(strings.ToUpper(value))
			}
		case "TOOL_NAME":
			d.ToolName = strings.ToLower(value)
		case "TOOL_INPUT":
			d.ToolInput = strings.Trim(strings.Trim(value, `"`), "'")
		case "QUERY":
			d.Query = value
		case "ANSWER":
			d.Answer = value
		}
	}

	return d
}

// record appends to the bounded audit log and updates counters.
func (r *Router) record(d Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.auditLog) >= r.maxAuditLog {
		r.auditLog = r.auditLog[1:]
	}
	r.auditLog = append(r.auditLog, d)

	r.stats.TotalRequests++
	r.stats.ActionCounts[string(d.Action)]++
	r.totalLatencyMs += d.LatencyMs
	r.stats.AvgLatencyMs = r.totalLatencyMs / r.stats.TotalRequests
}

// AuditLog returns the most recent decisions, oldest first.
func (r *Router) AuditLog(limit int) []Decision {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.auditLog) {
		limit = len(r.auditLog)
	}
	start := len(r.auditLog) - limit
	result := make([]Decision, limit)
	copy(result, r.auditLog[start:])
	return result
}

// GetStats returns routing statistics.
func (r *Router) GetStats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64, len(r.stats.ActionCounts))
	for k, v := range r.stats.ActionCounts {
		counts[k] = v
	}
	s := r.stats
	s.ActionCounts = counts
	return s
}

// Explain returns the recorded decision for a request id, or nil.
func (r *Router) Explain(requestID string) *Decision {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.auditLog) - 1; i >= 0; i-- {
		if r.auditLog[i].RequestID == requestID {
			d := r.auditLog[i]
			return &d
		}
	}
	return nil
}
