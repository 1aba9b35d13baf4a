// Package textgen defines the text-generation provider contract shared by the
// translation engine and the outline generator, plus the request-scoped
// settings used to pick a concrete backend.
package textgen

import "context"

// Provider completes a prompt into generated text. Implementations wrap a
// concrete backend (OpenAI-compatible API, Gemini, Ollama) and carry their
// own authentication and model selection.
type Provider interface {
	// Name identifies the backend for logs and diagnostics.
	Name() string
	// Complete sends one prompt and returns the raw response text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Selection names the backend and per-request overrides for building a
// Provider. APIKey and Model override configured defaults when set.
type Selection struct {
	Backend string
	Model   string
	APIKey  string
}
