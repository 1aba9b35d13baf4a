// Package whisper transcribes audio through an OpenAI-compatible
// transcription endpoint, returning the transcript as an SRT track.
package whisper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"slidecast/internal/services"
)

const (
	defaultModel       = "whisper-1"
	defaultHTTPTimeout = 10 * time.Minute
)

// Config captures the runtime settings required to talk to the API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client uploads audio files for transcription.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a transcription client.
func NewClient(cfg Config) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &Client{
		cfg:        Config{APIKey: strings.TrimSpace(cfg.APIKey), BaseURL: baseURL, Model: model},
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Transcribe uploads the audio file and returns the transcript in SRT form.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "whisper", "transcribe", "api key required", nil)
	}
	audio, err := os.Open(audioPath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "whisper", "transcribe", "open audio file", err)
	}
	defer audio.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("whisper request: create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("whisper request: copy audio: %w", err)
	}
	if err := writer.WriteField("model", c.cfg.Model); err != nil {
		return "", fmt.Errorf("whisper request: write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "srt"); err != nil {
		return "", fmt.Errorf("whisper request: write format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("whisper request: close form: %w", err)
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "audio/transcriptions")
	if err != nil {
		return "", fmt.Errorf("whisper request: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("whisper request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrProvider, "whisper", "transcribe", "http error", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrProvider, "whisper", "transcribe", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", services.Wrap(services.ErrProvider, "whisper", "transcribe",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))), nil)
	}
	transcript := strings.TrimSpace(string(payload))
	if transcript == "" {
		return "", services.Wrap(services.ErrProvider, "whisper", "transcribe", "empty transcript", nil)
	}
	return transcript, nil
}
