package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"slidecast/internal/services"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, Model: "qwen2.5"})
}

func TestCompleteReturnsResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Stream {
			t.Error("stream should be false")
		}
		if req.Model != "qwen2.5" {
			t.Errorf("model = %q", req.Model)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "generated"})
	})

	content, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "generated" {
		t.Fatalf("content = %q", content)
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Error: "model not loaded"})
	})
	_, err := client.Complete(context.Background(), "prompt")
	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("error = %v", err)
	}
}

func TestCompleteSurfacesHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	_, err := client.Complete(context.Background(), "prompt")
	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("error = %v", err)
	}
}

func TestCompleteRequiresModel(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.Complete(context.Background(), "prompt")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("error = %v", err)
	}
}
