package textgen

import (
	"errors"
	"testing"

	"slidecast/internal/config"
	"slidecast/internal/services"
)

func providerConfig() config.Providers {
	return config.Providers{
		OpenAI:  config.OpenAIProvider{APIKey: "k-openai", BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
		Gemini:  config.GeminiProvider{APIKey: "k-gemini", Model: "gemini-2.0-flash"},
		Ollama:  config.OllamaProvider{BaseURL: "http://localhost:11434", Model: "qwen2.5"},
		Timeout: 60,
	}
}

func TestBuildBackends(t *testing.T) {
	cfg := providerConfig()
	cases := []struct {
		backend  string
		wantName string
	}{
		{"", "openai"},
		{"openai", "openai"},
		{"gemini", "gemini"},
		{"ollama", "ollama"},
		{"OpenAI", "openai"},
	}
	for _, tc := range cases {
		provider, err := Build(cfg, Selection{Backend: tc.backend})
		if err != nil {
			t.Fatalf("Build(%q): %v", tc.backend, err)
		}
		if provider.Name() != tc.wantName {
			t.Fatalf("Build(%q).Name() = %q", tc.backend, provider.Name())
		}
	}
}

func TestBuildUnknownBackend(t *testing.T) {
	_, err := Build(providerConfig(), Selection{Backend: "carrier-pigeon"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v", err)
	}
}

func TestBuildMissingAPIKey(t *testing.T) {
	cfg := providerConfig()
	cfg.OpenAI.APIKey = ""
	if _, err := Build(cfg, Selection{Backend: "openai"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("error = %v", err)
	}
	// A request-scoped key satisfies the requirement.
	if _, err := Build(cfg, Selection{Backend: "openai", APIKey: "per-request"}); err != nil {
		t.Fatalf("Build with request key: %v", err)
	}
}
