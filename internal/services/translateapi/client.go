// Package translateapi translates subtitle text through the public Google
// translate endpoint. It backs translation requests that name no AI backend.
package translateapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"slidecast/internal/services"
)

const defaultBaseURL = "https://translate.googleapis.com"

// Client calls the unauthenticated gtx translate endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option adjusts client construction.
type Option func(*Client)

// WithHTTPClient substitutes the transport, primarily for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the backend for logs.
func (c *Client) Name() string { return "translate-api" }

// Translate converts one text into the target language code (for example
// "zh-TW" or "fr"). Empty input returns empty output without a request.
func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", nil
	}
	if strings.TrimSpace(target) == "" {
		return "", services.Wrap(services.ErrValidation, "translate-api", "translate", "target language required", nil)
	}

	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", "auto")
	query.Set("tl", target)
	query.Set("dt", "t")
	query.Set("q", trimmed)
	endpoint := c.baseURL + "/translate_a/single?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build translate request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "translate-api", "translate", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "translate-api", "translate", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrProvider, "translate-api", "translate",
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	return parseResponse(body)
}

// TranslateAll translates each text independently with bounded parallelism.
// Failed lines keep their source text; their indices come back in failed.
func (c *Client) TranslateAll(ctx context.Context, texts []string, target string, concurrency int) (out []string, failed []int) {
	out = make([]string, len(texts))
	copy(out, texts)
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, concurrency)
	)
	for i, text := range texts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, text string) {
			defer wg.Done()
			defer func() { <-sem }()
			translated, err := c.Translate(ctx, text, target)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, i)
				return
			}
			out[i] = translated
		}(i, text)
	}
	wg.Wait()
	return out, failed
}

// parseResponse unpacks the nested gtx array: the first element holds
// [translated, original, ...] segment pairs whose translations concatenate
// into the full result.
func parseResponse(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || len(payload) == 0 {
		return "", services.Wrap(services.ErrProvider, "translate-api", "parse", "unexpected response shape", err)
	}
	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", services.Wrap(services.ErrProvider, "translate-api", "parse", "unexpected segment shape", err)
	}
	var b strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		var text string
		if err := json.Unmarshal(segment[0], &text); err != nil {
			continue
		}
		b.WriteString(text)
	}
	result := strings.TrimSpace(b.String())
	if result == "" {
		return "", services.Wrap(services.ErrProvider, "translate-api", "parse", "empty translation", nil)
	}
	return result, nil
}
