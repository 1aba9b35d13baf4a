// Package gemini wraps the Google Gemini API behind the shared provider
// contract.
package gemini

import (
	"context"
	"strings"
	"time"

	"google.golang.org/genai"

	"slidecast/internal/services"
)

// Config captures the runtime settings required to talk to Gemini.
type Config struct {
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// Client issues content-generation requests against the Gemini API.
type Client struct {
	cfg Config
}

// NewClient constructs a Gemini client using the supplied configuration.
func NewClient(cfg Config) *Client {
	return &Client{cfg: Config{
		APIKey:         strings.TrimSpace(cfg.APIKey),
		Model:          strings.TrimSpace(cfg.Model),
		TimeoutSeconds: cfg.TimeoutSeconds,
	}}
}

// Name implements textgen.Provider.
func (c *Client) Name() string { return "gemini" }

// Complete sends one prompt and concatenates the text parts of the first
// candidate.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrValidation, "gemini", "complete", "prompt required", nil)
	}
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "gemini", "complete", "api key required", nil)
	}

	if c.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", services.Wrap(services.ErrProvider, "gemini", "complete", "create client", err)
	}

	result, err := client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", services.Wrap(services.ErrProvider, "gemini", "complete", "generate content", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", services.Wrap(services.ErrProvider, "gemini", "complete", "empty response", nil)
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", services.Wrap(services.ErrProvider, "gemini", "complete", "no text parts in response", nil)
	}
	return text.String(), nil
}
