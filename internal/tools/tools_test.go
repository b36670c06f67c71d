package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestRegistry() *Registry {
	r := NewRegistry(nil)
	r.Register(&Tool{
		Name:        "echo",
		Description: "Echo the input back.",
		Handler: func(ctx context.Context, input string) (string, error) {
			return "echo: " + input, nil
		},
	})
	r.Register(&Tool{
		Name:        "boom",
		Description: "Always fails.",
		Handler: func(ctx context.Context, input string) (string, error) {
			return "", errors.New("device unreachable")
		},
	})
	return r
}

func TestExecute(t *testing.T) {
	r := newTestRegistry()

	got := r.Execute(context.Background(), "echo", "hello")
	if got != "echo: hello" {
		t.Errorf("got %q", got)
	}
}

func TestExecute_CaseInsensitive(t *testing.T) {
	r := newTestRegistry()

	got := r.Execute(context.Background(), "ECHO", "hello")
	if got != "echo: hello" {
		t.Errorf("got %q", got)
	}
}

func TestExecute_StripsQuotes(t *testing.T) {
	r := newTestRegistry()

	for _, input := range []string{`"192.168.1.0/24"`, `'192.168.1.0/24'`} {
		got := r.Execute(context.Background(), "echo", input)
		if got != "echo: 192.168.1.0/24" {
			t.Errorf("input %s: got %q", input, got)
		}
	}
}

func TestExecute_UnknownTool(t *testing.T) {
	r := newTestRegistry()

	got := r.Execute(context.Background(), "reboot_core_switch", "now")
	if !strings.HasPrefix(got, "Tool error:") {
		t.Errorf("missing error prefix: %q", got)
	}
	if !strings.Contains(got, "reboot_core_switch") {
		t.Errorf("result does not name the requested tool: %q", got)
	}
	if !strings.Contains(got, "echo") {
		t.Errorf("result does not list available tools: %q", got)
	}
}

func TestExecute_HandlerError(t *testing.T) {
	r := newTestRegistry()

	got := r.Execute(context.Background(), "boom", "")
	if got != "Tool error: device unreachable" {
		t.Errorf("got %q", got)
	}
}

func TestCatalog(t *testing.T) {
	r := newTestRegistry()

	catalog := r.Catalog()
	if !strings.Contains(catalog, "1. boom: Always fails.") {
		t.Errorf("catalog missing numbered entry:\n%s", catalog)
	}
	if !strings.Contains(catalog, "2. echo: Echo the input back.") {
		t.Errorf("catalog not sorted or missing entry:\n%s", catalog)
	}
}

func TestStripQuotes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"vlan 10"`, "vlan 10"},
		{`'vlan 10'`, "vlan 10"},
		{`  "padded"  `, "padded"},
		{`"mismatched'`, `"mismatched'`},
		{`plain`, "plain"},
		{`"`, `"`},
		{``, ``},
	}
	for _, tt := range tests {
		if got := StripQuotes(tt.in); got != tt.want {
			t.Errorf("StripQuotes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPairArgs(t *testing.T) {
	tests := []struct {
		in           string
		first, second string
	}{
		{"R1, show ip route", "R1", "show ip route"},
		{"R1,show version", "R1", "show version"},
		{"R1", "R1", ""},
		{"R1, a, b", "R1", "a, b"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, second := PairArgs(tt.in)
		if first != tt.first || second != tt.second {
			t.Errorf("PairArgs(%q) = (%q, %q), want (%q, %q)",
				tt.in, first, second, tt.first, tt.second)
		}
	}
}
