package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"slidecast/internal/services"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(
		Config{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"},
		WithSleeper(func(time.Duration) {}),
	)
	return client, server
}

func completionBody(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func TestCompleteReturnsContent(t *testing.T) {
	var gotPath, gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		w.Write([]byte(completionBody("translated text")))
	})

	content, err := client.Complete(context.Background(), "translate this")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "translated text" {
		t.Fatalf("content = %q", content)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth = %q", gotAuth)
	}
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(completionBody("ok")))
	})

	content, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "ok" || calls.Load() != 3 {
		t.Fatalf("content=%q calls=%d", content, calls.Load())
	}
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	_, err := client.Complete(context.Background(), "prompt")
	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("error = %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestCompleteToleratesStreamingSchema(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"delta":{"content":"from delta"}}]}`))
	})

	content, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "from delta" {
		t.Fatalf("content = %q", content)
	}
}

func TestCompleteAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model not found"}}`))
	})

	_, err := client.Complete(context.Background(), "prompt")
	if err == nil || !errors.Is(err, services.ErrProvider) {
		t.Fatalf("error = %v", err)
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{Model: "m"})
	_, err := client.Complete(context.Background(), "prompt")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("error = %v", err)
	}
}

func TestCompleteRequiresPrompt(t *testing.T) {
	client := NewClient(Config{APIKey: "k"})
	_, err := client.Complete(context.Background(), "  ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v", err)
	}
}
