package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider(&ProviderConfig{Name: "openai", Type: ProviderTypeAPI, Config: map[string]interface{}{}}); err == nil {
		t.Error("expected error for missing api_key")
	}

	p, err := NewOpenAIProvider(&ProviderConfig{
		Name:   "openai",
		Type:   ProviderTypeAPI,
		Config: map[string]interface{}{"api_key": "k", "model": "gpt-4o", "max_tokens": float64(256)},
	})
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}
	if p.baseURL != openAIDefaultBaseURL || p.model != "gpt-4o" || p.maxTokens != 256 {
		t.Errorf("unexpected provider settings: %s %s %d", p.baseURL, p.model, p.maxTokens)
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system + user messages, got %+v", req.Messages)
		}
		if req.MaxTokens != 1000 {
			t.Errorf("max_tokens = %d, want 1000", req.MaxTokens)
		}

		resp := openAIResponse{
			ID:    "chatcmpl-1",
			Model: openAIDefaultModel,
			Choices: []openAIChoice{
				{Message: openAIMessage{Role: "assistant", Content: "[]"}, FinishReason: "stop"},
			},
			Usage: openAIUsage{PromptTokens: 7, CompletionTokens: 1, TotalTokens: 8},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))

	p, err := NewOpenAIProvider(apiConfig("openai", server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	resp, err := p.Generate(context.Background(), &GenerateRequest{
		Prompt:       "suggest",
		SystemPrompt: "You are a project manager",
		MaxTokens:    1000,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Content != "[]" || resp.FinishReason != "stop" || resp.TokensUsed() != 8 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestOpenAIProvider_GenerateHTTPError(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))

	p, err := NewOpenAIProvider(apiConfig("openai", server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	_, err = p.Generate(context.Background(), &GenerateRequest{Prompt: "x"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.Retryable() {
		t.Error("401 should not be retryable")
	}
	if httpErr.Message != "bad key" {
		t.Errorf("Message = %q", httpErr.Message)
	}
}
