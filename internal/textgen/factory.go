package textgen

import (
	"fmt"
	"strings"

	"slidecast/internal/config"
	"slidecast/internal/services"
	"slidecast/internal/services/gemini"
	"slidecast/internal/services/llm"
	"slidecast/internal/services/ollama"
)

// Build resolves a Selection against configured provider defaults and
// returns a ready Provider. Recognized backends are "openai", "gemini", and
// "ollama"; an empty backend defaults to openai.
func Build(cfg config.Providers, sel Selection) (Provider, error) {
	backend := strings.ToLower(strings.TrimSpace(sel.Backend))
	switch backend {
	case "", "openai":
		apiKey := firstNonEmpty(sel.APIKey, cfg.OpenAI.APIKey)
		model := firstNonEmpty(sel.Model, cfg.OpenAI.Model)
		if apiKey == "" {
			return nil, services.Wrap(services.ErrConfiguration, "textgen", "build", "openai api key not configured", nil)
		}
		return llm.NewClient(llm.Config{
			APIKey:         apiKey,
			BaseURL:        cfg.OpenAI.BaseURL,
			Model:          model,
			TimeoutSeconds: cfg.Timeout,
		}), nil
	case "gemini":
		apiKey := firstNonEmpty(sel.APIKey, cfg.Gemini.APIKey)
		model := firstNonEmpty(sel.Model, cfg.Gemini.Model)
		if apiKey == "" {
			return nil, services.Wrap(services.ErrConfiguration, "textgen", "build", "gemini api key not configured", nil)
		}
		return gemini.NewClient(gemini.Config{
			APIKey:         apiKey,
			Model:          model,
			TimeoutSeconds: cfg.Timeout,
		}), nil
	case "ollama":
		return ollama.NewClient(ollama.Config{
			BaseURL:        cfg.Ollama.BaseURL,
			Model:          firstNonEmpty(sel.Model, cfg.Ollama.Model),
			TimeoutSeconds: cfg.Timeout,
		}), nil
	}
	return nil, services.Wrap(services.ErrValidation, "textgen", "build", fmt.Sprintf("unknown backend %q", sel.Backend), nil)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
