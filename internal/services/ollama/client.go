// Package ollama wraps a local Ollama instance behind the shared provider
// contract.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"slidecast/internal/services"
)

const defaultHTTPTimeout = 300 * time.Second

// Config captures the runtime settings required to talk to Ollama.
type Config struct {
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client issues generate requests against the Ollama HTTP API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs an Ollama client using the supplied configuration.
func NewClient(cfg Config) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Client{
		cfg: Config{
			BaseURL:        baseURL,
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name implements textgen.Provider.
func (c *Client) Name() string { return "ollama" }

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Complete sends one non-streaming generate request.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrValidation, "ollama", "complete", "prompt required", nil)
	}
	if c.cfg.Model == "" {
		return "", services.Wrap(services.ErrConfiguration, "ollama", "complete", "model required", nil)
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "api/generate")
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "ollama", "complete", "build url", err)
	}
	encoded, err := json.Marshal(generateRequest{Model: c.cfg.Model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("ollama request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("ollama request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrProvider, "ollama", "complete", "http error", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrProvider, "ollama", "complete", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", services.Wrap(services.ErrProvider, "ollama", "complete",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrProvider, "ollama", "complete", "decode response", err)
	}
	if parsed.Error != "" {
		return "", services.Wrap(services.ErrProvider, "ollama", "complete", parsed.Error, nil)
	}
	if strings.TrimSpace(parsed.Response) == "" {
		return "", services.Wrap(services.ErrProvider, "ollama", "complete", "empty response", nil)
	}
	return parsed.Response, nil
}
