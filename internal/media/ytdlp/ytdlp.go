// Package ytdlp shells out to yt-dlp for video metadata, downloads, and
// platform subtitle tracks.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"slidecast/internal/services"
)

var commandContext = exec.CommandContext

// Metadata is the subset of yt-dlp's JSON dump the pipeline needs.
type Metadata struct {
	ID              string
	Title           string
	DurationSeconds float64
	// SubtitleLanguages lists manually authored tracks; CaptionLanguages
	// lists auto-generated ones.
	SubtitleLanguages []string
	CaptionLanguages  []string
}

// Client wraps the yt-dlp binary.
type Client struct {
	bin     string
	timeout time.Duration
}

// NewClient builds a client. An empty binary defaults to yt-dlp on PATH;
// timeoutSeconds bounds each invocation.
func NewClient(bin string, timeoutSeconds int) *Client {
	if strings.TrimSpace(bin) == "" {
		bin = "yt-dlp"
	}
	timeout := 30 * time.Minute
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return &Client{bin: bin, timeout: timeout}
}

// Available reports whether the binary can be found.
func (c *Client) Available() bool {
	_, err := exec.LookPath(c.bin)
	return err == nil
}

// Metadata fetches video metadata without downloading anything.
func (c *Client) Metadata(ctx context.Context, url string) (*Metadata, error) {
	out, err := c.run(ctx, "--dump-json", "--skip-download", "--no-playlist", url)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "metadata", "fetch video metadata", err)
	}

	var raw struct {
		ID                string                     `json:"id"`
		Title             string                     `json:"title"`
		Duration          float64                    `json:"duration"`
		Subtitles         map[string]json.RawMessage `json:"subtitles"`
		AutomaticCaptions map[string]json.RawMessage `json:"automatic_captions"`
	}
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "metadata", "parse metadata json", err)
	}
	return &Metadata{
		ID:                raw.ID,
		Title:             raw.Title,
		DurationSeconds:   raw.Duration,
		SubtitleLanguages: sortedKeys(raw.Subtitles),
		CaptionLanguages:  sortedKeys(raw.AutomaticCaptions),
	}, nil
}

// Download fetches the video into destDir and returns the downloaded file
// path as reported by yt-dlp.
func (c *Client) Download(ctx context.Context, url, quality, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	out, err := c.run(ctx,
		"-f", formatFor(quality),
		"-o", filepath.Join(destDir, "%(id)s.%(ext)s"),
		"--no-playlist",
		"--no-simulate",
		"--print", "after_move:filepath",
		url,
	)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ytdlp", "download", "download video", err)
	}
	path := lastNonEmptyLine(string(out))
	if path == "" {
		return "", services.Wrap(services.ErrExternalTool, "ytdlp", "download", "yt-dlp reported no output file", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ytdlp", "download", fmt.Sprintf("downloaded file missing: %s", path), err)
	}
	return path, nil
}

// Subtitles fetches one subtitle track as SRT and returns its path. Manual
// tracks are preferred; auto-generated captions are accepted as fallback.
// destDir is shared between videos, so the lookup is scoped to videoID;
// tracks left behind by other videos are never picked up.
func (c *Client) Subtitles(ctx context.Context, url, lang, videoID, destDir string) (string, error) {
	if strings.TrimSpace(videoID) == "" {
		return "", services.Wrap(services.ErrValidation, "ytdlp", "subtitles", "video id required", nil)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create subtitle dir: %w", err)
	}
	template := filepath.Join(destDir, "%(id)s.%(ext)s")
	_, err := c.run(ctx,
		"--skip-download",
		"--write-subs", "--write-auto-subs",
		"--sub-langs", lang,
		"--convert-subs", "srt",
		"--no-playlist",
		"-o", template,
		url,
	)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ytdlp", "subtitles", "fetch subtitles", err)
	}

	matches, err := filepath.Glob(filepath.Join(destDir, videoID+"."+lang+"*.srt"))
	if err != nil || len(matches) == 0 {
		return "", services.Wrap(services.ErrNotFound, "ytdlp", "subtitles",
			fmt.Sprintf("no %s subtitle track produced for %s", lang, videoID), err)
	}
	return matches[0], nil
}

// ChooseLanguage picks the best available language by priority order. Manual
// tracks beat auto-generated captions regardless of priority rank. The second
// return reports whether the chosen track is auto-generated.
func ChooseLanguage(meta *Metadata, priority []string) (string, bool) {
	for _, want := range priority {
		for _, have := range meta.SubtitleLanguages {
			if matchLang(have, want) {
				return have, false
			}
		}
	}
	for _, want := range priority {
		for _, have := range meta.CaptionLanguages {
			if matchLang(have, want) {
				return have, true
			}
		}
	}
	return "", false
}

func matchLang(have, want string) bool {
	have = strings.ToLower(have)
	want = strings.ToLower(want)
	return have == want || strings.HasPrefix(have, want+"-") || strings.HasPrefix(want, have+"-")
}

func formatFor(quality string) string {
	switch strings.ToLower(strings.TrimSpace(quality)) {
	case "", "best":
		return "bestvideo+bestaudio/best"
	case "1080p":
		return "bestvideo[height<=1080]+bestaudio/best[height<=1080]"
	case "720p":
		return "bestvideo[height<=720]+bestaudio/best[height<=720]"
	case "480p":
		return "bestvideo[height<=480]+bestaudio/best[height<=480]"
	case "360p":
		return "bestvideo[height<=360]+bestaudio/best[height<=360]"
	default:
		return "bestvideo+bestaudio/best"
	}
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := commandContext(ctx, c.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, services.Wrap(services.ErrTimeout, "ytdlp", "run",
				fmt.Sprintf("timed out after %s", c.timeout), nil)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("yt-dlp: %s", detail)
	}
	return stdout.Bytes(), nil
}

func lastNonEmptyLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
