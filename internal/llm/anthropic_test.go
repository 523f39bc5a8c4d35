package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnthropicProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s, want /v1/messages", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %s, want test-key", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("anthropic-version = %s", r.Header.Get("anthropic-version"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.System != "classify updates" {
			t.Errorf("system = %q", req.System)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}

		resp := anthropicResponse{
			ID:   "msg_123",
			Type: "message",
			Role: "assistant",
			Content: []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			}{
				{Type: "text", Text: `[{"type":"stage","value":"Craft"}]`},
			},
			Model: "claude-sonnet-4-20250514",
			Usage: struct {
				InputTokens  int `json:"input_tokens"`
				OutputTokens int `json:"output_tokens"`
			}{InputTokens: 40, OutputTokens: 10},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), Request{
		System:  "classify updates",
		Content: "Moving to Craft",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != `[{"type":"stage","value":"Craft"}]` {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.TokensUsed != 50 {
		t.Errorf("tokens = %d, want 50", resp.TokensUsed)
	}
}

func TestAnthropicProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}

	_, err = provider.Complete(context.Background(), Request{Content: "hi"})
	if err == nil {
		t.Fatal("expected error on 500")
	}
	if !strings.Contains(err.Error(), "overloaded") {
		t.Errorf("error should carry API message, got: %v", err)
	}
}

func TestAnthropicProvider_Complete_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"m"}`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}

	_, err = provider.Complete(context.Background(), Request{Content: "hi"})
	if err == nil {
		t.Fatal("expected error on empty content block")
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(Config{}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestNewProvider_Factory(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{"anthropic", "anthropic", false},
		{"claude", "anthropic", false},
		{"", "anthropic", false},
		{"openai", "openai", false},
		{"gemini", "", true},
	}
	for _, tt := range tests {
		p, err := NewProvider(Config{Provider: tt.provider, APIKey: "k"})
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewProvider(%q): expected error", tt.provider)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewProvider(%q): %v", tt.provider, err)
			continue
		}
		if p.Name() != tt.wantName {
			t.Errorf("NewProvider(%q).Name() = %q, want %q", tt.provider, p.Name(), tt.wantName)
		}
	}
}
