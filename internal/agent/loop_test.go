package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/netsage/netsage/internal/llm"
	"github.com/netsage/netsage/internal/router"
	"github.com/netsage/netsage/internal/session"
	"github.com/netsage/netsage/internal/tools"
)

// scriptedClient serves the router reply first, then the composer
// reply, alternating by call.
type scriptedClient struct {
	replies  []string
	errAt    int // 1-based call number that fails; 0 = never
	calls    int
	lastUser string
}

func (s *scriptedClient) Complete(ctx context.Context, system string, history []llm.Message, user string) (string, error) {
	s.calls++
	s.lastUser = user
	if s.errAt > 0 && s.calls == s.errAt {
		return "", errors.New("completion backend down")
	}
	return s.replies[(s.calls-1)%len(s.replies)], nil
}

func (s *scriptedClient) Ping(ctx context.Context) error { return nil }

type fixedRetriever struct {
	text      string
	lastQuery string
}

func (f *fixedRetriever) Retrieve(ctx context.Context, query string) string {
	f.lastQuery = query
	return f.text
}

func newTestLoop(client llm.Client, retriever Retriever) *Loop {
	registry := tools.NewRegistry(nil)
	registry.Register(&tools.Tool{
		Name:        "lookup_vlan",
		Description: "Look up VLAN info.",
		Handler: func(ctx context.Context, input string) (string, error) {
			if input == "10" {
				return "VLAN 10: USERS, Subnet: 192.168.10.0/24, Gateway: 192.168.10.1", nil
			}
			return "VLAN " + input + " not found", nil
		},
	})

	store := session.NewMemoryStore(0)
	rt := router.New(client, nil, 0)
	return New(nil, store, rt, registry, retriever, client)
}

func TestAsk_ToolCycle(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"ACTION: TOOL\nTOOL_NAME: lookup_vlan\nTOOL_INPUT: 10",
		"VLAN 10 is the USERS network on 192.168.10.0/24.",
	}}
	l := newTestLoop(client, nil)

	res, err := l.Ask(context.Background(), "default", "what is vlan 10?")
	if err != nil {
		t.Fatal(err)
	}
	if res.Answer != "VLAN 10 is the USERS network on 192.168.10.0/24." {
		t.Errorf("answer = %q", res.Answer)
	}
	if res.Decision.Action != router.ActionTool {
		t.Errorf("action = %q", res.Decision.Action)
	}
	if !strings.Contains(client.lastUser, "VLAN 10: USERS") {
		t.Errorf("tool output not in composer context: %q", client.lastUser)
	}

	turns := l.History("default")
	if len(turns) != 2 {
		t.Fatalf("history has %d turns", len(turns))
	}
	if turns[0].Role != session.RoleHuman || turns[1].Role != session.RoleAssistant {
		t.Errorf("roles = %q, %q", turns[0].Role, turns[1].Role)
	}
}

func TestAsk_UnknownToolStillAnswers(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"ACTION: TOOL\nTOOL_NAME: reboot_everything\nTOOL_INPUT: now",
		"I don't have that tool.",
	}}
	l := newTestLoop(client, nil)

	res, err := l.Ask(context.Background(), "default", "reboot everything")
	if err != nil {
		t.Fatal(err)
	}
	if res.Answer == "" {
		t.Fatal("no answer")
	}
	if !strings.Contains(client.lastUser, "reboot_everything") {
		t.Errorf("unknown-tool text not surfaced to composer: %q", client.lastUser)
	}
}

func TestAsk_DocsCycle(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"ACTION: DOCS\nQUERY: ospf exstart mtu",
		"Check MTU on both interfaces.",
	}}
	retr := &fixedRetriever{text: "EXSTART usually means MTU mismatch."}
	l := newTestLoop(client, retr)

	res, err := l.Ask(context.Background(), "default", "why is ospf stuck in exstart?")
	if err != nil {
		t.Fatal(err)
	}
	if retr.lastQuery != "ospf exstart mtu" {
		t.Errorf("query = %q", retr.lastQuery)
	}
	if !strings.Contains(client.lastUser, "MTU mismatch") {
		t.Errorf("retrieved text not in composer context: %q", client.lastUser)
	}
	if res.Answer != "Check MTU on both interfaces." {
		t.Errorf("answer = %q", res.Answer)
	}
}

func TestAsk_DocsEmptyQueryFallsBackToQuestion(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"ACTION: DOCS",
		"Here is what the runbook says.",
	}}
	retr := &fixedRetriever{text: "runbook text"}
	l := newTestLoop(client, retr)

	if _, err := l.Ask(context.Background(), "default", "how do I fix duplex mismatch?"); err != nil {
		t.Fatal(err)
	}
	if retr.lastQuery != "how do I fix duplex mismatch?" {
		t.Errorf("query = %q", retr.lastQuery)
	}
}

func TestAsk_DocsWithoutRetriever(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"ACTION: DOCS\nQUERY: anything",
		"Retrieval is not available.",
	}}
	l := newTestLoop(client, nil)

	if _, err := l.Ask(context.Background(), "default", "how?"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(client.lastUser, "retrieval is disabled") {
		t.Errorf("composer context = %q", client.lastUser)
	}
}

func TestAsk_DirectWithAnswerSkipsCompose(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"ACTION: DIRECT\nANSWER: A /24 has 254 usable hosts.",
	}}
	l := newTestLoop(client, nil)

	res, err := l.Ask(context.Background(), "default", "how many hosts in a /24?")
	if err != nil {
		t.Fatal(err)
	}
	if res.Answer != "A /24 has 254 usable hosts." {
		t.Errorf("answer = %q", res.Answer)
	}
	if client.calls != 1 {
		t.Errorf("composer was called: %d completion calls", client.calls)
	}

	turns := l.History("default")
	if len(turns) != 2 || turns[1].Content != res.Answer {
		t.Errorf("history = %+v", turns)
	}
}

func TestAsk_DirectWithoutAnswerComposes(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"ACTION: DIRECT",
		"Composed answer.",
	}}
	l := newTestLoop(client, nil)

	res, err := l.Ask(context.Background(), "default", "tell me about subnetting")
	if err != nil {
		t.Fatal(err)
	}
	if client.calls != 2 {
		t.Errorf("expected compose call, got %d calls", client.calls)
	}
	if !strings.Contains(client.lastUser, "networking knowledge") {
		t.Errorf("placeholder context missing: %q", client.lastUser)
	}
	if res.Answer != "Composed answer." {
		t.Errorf("answer = %q", res.Answer)
	}
}

func TestAsk_MalformedComposes(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"I would check the interface counters first.",
		"Composed answer.",
	}}
	l := newTestLoop(client, nil)

	res, err := l.Ask(context.Background(), "default", "what now?")
	if err != nil {
		t.Fatal(err)
	}
	if res.Decision.Action != router.ActionMalformed {
		t.Errorf("action = %q", res.Decision.Action)
	}
	if res.Answer != "Composed answer." {
		t.Errorf("answer = %q", res.Answer)
	}
}

func TestAsk_RouterFaultPropagates(t *testing.T) {
	client := &scriptedClient{replies: []string{"unused"}, errAt: 1}
	l := newTestLoop(client, nil)

	if _, err := l.Ask(context.Background(), "default", "q"); err == nil {
		t.Fatal("expected error")
	}
	if got := l.History("default"); len(got) != 0 {
		t.Errorf("failed cycle committed turns: %d", len(got))
	}
}

func TestAsk_ComposerFaultPropagates(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"ACTION: TOOL\nTOOL_NAME: lookup_vlan\nTOOL_INPUT: 10",
	}, errAt: 2}
	l := newTestLoop(client, nil)

	if _, err := l.Ask(context.Background(), "default", "q"); err == nil {
		t.Fatal("expected error")
	}
	if got := l.History("default"); len(got) != 0 {
		t.Errorf("failed cycle committed turns: %d", len(got))
	}
}

func TestAsk_HistoryCarriesAcrossTurns(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"ACTION: DIRECT\nANSWER: first",
	}}
	l := newTestLoop(client, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := l.Ask(ctx, "default", "again"); err != nil {
			t.Fatal(err)
		}
	}

	turns := l.History("default")
	if len(turns) != 6 {
		t.Fatalf("history has %d turns, want 6", len(turns))
	}
	for i, turn := range turns {
		want := session.RoleHuman
		if i%2 == 1 {
			want = session.RoleAssistant
		}
		if turn.Role != want {
			t.Errorf("turn %d role = %q", i, turn.Role)
		}
	}
}

func TestAsk_SessionsIndependent(t *testing.T) {
	client := &scriptedClient{replies: []string{"ACTION: DIRECT\nANSWER: hi"}}
	l := newTestLoop(client, nil)
	ctx := context.Background()

	if _, err := l.Ask(ctx, "default", "hello"); err != nil {
		t.Fatal(err)
	}
	if got := l.History("user2"); len(got) != 0 {
		t.Errorf("fresh session saw %d turns", len(got))
	}
}

func TestClear(t *testing.T) {
	client := &scriptedClient{replies: []string{"ACTION: DIRECT\nANSWER: hi"}}
	l := newTestLoop(client, nil)

	if _, err := l.Ask(context.Background(), "default", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := l.Clear("default"); err != nil {
		t.Fatal(err)
	}
	if got := l.History("default"); len(got) != 0 {
		t.Errorf("history survived clear: %d turns", len(got))
	}
}
