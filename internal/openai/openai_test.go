package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdfquiz/internal/llm"
)

// TestCompleteSendsSingleUserMessage verifies the request shape and the returned completion.
func TestCompleteSendsSingleUserMessage(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  summary  "},"finish_reason":"stop"}]}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient("key", "", server.URL)
	out, err := client.Complete(context.Background(), llm.Request{Prompt: "hello", MaxTokens: 500, Temperature: 0.5})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "  summary  " {
		t.Fatalf("unexpected completion %q", out)
	}
	if got.Model != DefaultModel {
		t.Fatalf("expected default model, got %q", got.Model)
	}
	if got.MaxTokens != 500 || got.Temperature != 0.5 {
		t.Fatalf("unexpected generation settings: %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "hello" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

// TestCompleteEmptyChoices verifies an answer without choices is an empty completion.
func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","choices":[]}`)
	}))
	t.Cleanup(server.Close)

	_, err := NewClient("key", "m", server.URL).Complete(context.Background(), llm.Request{Prompt: "x"})
	if !errors.Is(err, llm.ErrEmptyCompletion) {
		t.Fatalf("expected empty completion error, got %v", err)
	}
}

// TestCompleteAuthFailure verifies HTTP errors are returned to the caller.
func TestCompleteAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	t.Cleanup(server.Close)

	if _, err := NewClient("", "m", server.URL).Complete(context.Background(), llm.Request{Prompt: "x"}); err == nil {
		t.Fatalf("expected auth error")
	}
}
