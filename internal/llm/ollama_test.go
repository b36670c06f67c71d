package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaComplete(t *testing.T) {
	var gotReq ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   "qwen2.5",
			Message: Message{Role: "assistant", Content: "ACTION: DIRECT\nANSWER: hi"},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "qwen2.5", nil)
	history := []Message{
		{Role: RoleUser, Content: "earlier question"},
		{Role: RoleAssistant, Content: "earlier answer"},
	}

	got, err := c.Complete(context.Background(), "sys prompt", history, "what is a vlan")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "ACTION: DIRECT\nANSWER: hi" {
		t.Errorf("content = %q", got)
	}

	// system first, history in order, current question last
	want := []Message{
		{Role: RoleSystem, Content: "sys prompt"},
		{Role: RoleUser, Content: "earlier question"},
		{Role: RoleAssistant, Content: "earlier answer"},
		{Role: RoleUser, Content: "what is a vlan"},
	}
	if len(gotReq.Messages) != len(want) {
		t.Fatalf("sent %d messages, want %d", len(gotReq.Messages), len(want))
	}
	for i := range want {
		if gotReq.Messages[i] != want[i] {
			t.Errorf("message[%d] = %+v, want %+v", i, gotReq.Messages[i], want[i])
		}
	}
	if gotReq.Stream {
		t.Error("expected non-streaming request")
	}
}

func TestOllamaComplete_Options(t *testing.T) {
	var gotReq ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: Message{Role: "assistant", Content: "ok"},
			Done:    true,
		})
	}))
	defer srv.Close()

	temp := 0.0
	c := NewOllamaClient(srv.URL, "qwen2.5", nil)
	c.SetOptions(&temp, 256)

	if _, err := c.Complete(context.Background(), "", nil, "q"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if gotReq.Options == nil {
		t.Fatal("options missing from request")
	}
	if gotReq.Options.Temperature == nil || *gotReq.Options.Temperature != 0 {
		t.Errorf("temperature = %v, want explicit 0", gotReq.Options.Temperature)
	}
	if gotReq.Options.NumPredict != 256 {
		t.Errorf("num_predict = %d, want 256", gotReq.Options.NumPredict)
	}
}

func TestOllamaComplete_NoOptionsByDefault(t *testing.T) {
	var gotRaw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotRaw); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: Message{Role: "assistant", Content: "ok"},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "qwen2.5", nil)
	if _, err := c.Complete(context.Background(), "", nil, "q"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, ok := gotRaw["options"]; ok {
		t.Error("options should be omitted when none are set")
	}
}

func TestOllamaComplete_NoSystem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 1 || req.Messages[0].Role != RoleUser {
			t.Errorf("expected single user message, got %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: Message{Role: "assistant", Content: "ok"},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "qwen2.5", nil)
	if _, err := c.Complete(context.Background(), "", nil, "q"); err != nil {
		t.Fatalf("complete: %v", err)
	}
}

func TestOllamaComplete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "missing-model", nil)
	if _, err := c.Complete(context.Background(), "", nil, "q"); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestOllamaPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "qwen2.5", nil)
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestOllamaListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"qwen2.5"},{"name":"llama3.1"}]}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "qwen2.5", nil)
	names, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("list models: %v", err)
	}
	if len(names) != 2 || names[0] != "qwen2.5" || names[1] != "llama3.1" {
		t.Errorf("names = %v", names)
	}
}
