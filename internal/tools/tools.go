// Package tools defines the tools available to the assistant.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Tool represents a callable tool. Handlers take the raw input string
// from the router and return human-readable text.
type Tool struct {
	Name        string                                                 `json:"name"`
	Description string                                                 `json:"description"`
	Handler     func(ctx context.Context, input string) (string, error) `json:"-"`
}

// Registry holds available tools.
type Registry struct {
	tools  map[string]*Tool
	logger *slog.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: logger,
	}
}

// Register adds a tool to the registry. Names are stored lowercase so
// lookups tolerate whatever casing the model emits.
func (r *Registry) Register(t *Tool) {
	r.tools[strings.ToLower(t.Name)] = t
}

// Get retrieves a tool by name, case-insensitively.
// Returns nil if not found.
func (r *Registry) Get(name string) *Tool {
	return r.tools[strings.ToLower(strings.TrimSpace(name))]
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog renders a numbered tool list for the router prompt.
func (r *Registry) Catalog() string {
	names := r.Names()
	var b strings.Builder
	for i, name := range names {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, name, r.tools[name].Description)
	}
	return b.String()
}

// Execute runs a tool by name. It never returns an error: faults are
// folded into the returned text so the composer can explain them to
// the user instead of aborting the cycle.
func (r *Registry) Execute(ctx context.Context, name, input string) string {
	input = StripQuotes(input)

	tool := r.Get(name)
	if tool == nil {
		r.logger.Warn("unknown tool requested", "tool", name)
		return fmt.Sprintf("Tool error: unknown tool '%s'. Available tools: %s",
			name, strings.Join(r.Names(), ", "))
	}

	r.logger.Debug("executing tool", "tool", tool.Name, "input", input)

	result, err := tool.Handler(ctx, input)
	if err != nil {
		r.logger.Warn("tool failed", "tool", tool.Name, "error", err)
		return fmt.Sprintf("Tool error: %v", err)
	}
	return result
}

// StripQuotes removes one layer of matching single or double quotes
// that models sometimes wrap around tool input.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// PairArgs splits a two-argument input on the first comma. The second
// value is optional and empty when absent.
func PairArgs(input string) (string, string) {
	first, rest, found := strings.Cut(input, ",")
	if !found {
		return strings.TrimSpace(first), ""
	}
	return strings.TrimSpace(first), strings.TrimSpace(rest)
}
