// Package ffmpeg shells out to ffmpeg and ffprobe for frame capture, audio
// extraction, and media inspection.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"slidecast/internal/services"
)

var commandContext = exec.CommandContext

// defaultFrameHeight keeps captured slides readable without storing
// full-resolution stills.
const defaultFrameHeight = 720

// Client wraps the ffmpeg and ffprobe binaries.
type Client struct {
	ffmpegBin  string
	ffprobeBin string
	timeout    time.Duration
}

// NewClient builds a client. Empty binaries default to PATH lookups;
// timeoutSeconds bounds each invocation.
func NewClient(ffmpegBin, ffprobeBin string, timeoutSeconds int) *Client {
	if strings.TrimSpace(ffmpegBin) == "" {
		ffmpegBin = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBin) == "" {
		ffprobeBin = "ffprobe"
	}
	timeout := 2 * time.Minute
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return &Client{ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin, timeout: timeout}
}

// Available reports whether both binaries can be found.
func (c *Client) Available() bool {
	if _, err := exec.LookPath(c.ffmpegBin); err != nil {
		return false
	}
	_, err := exec.LookPath(c.ffprobeBin)
	return err == nil
}

// Duration probes the container duration in seconds.
func (c *Client) Duration(ctx context.Context, videoPath string) (float64, error) {
	out, err := c.run(ctx, c.ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", "duration", "probe video duration", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", "duration",
			fmt.Sprintf("unexpected output %q", strings.TrimSpace(string(out))), err)
	}
	return seconds, nil
}

// CaptureFrame writes one still image from the video at the given timestamp.
// Seeking happens before the input open for speed; height scaling keeps the
// aspect ratio.
func (c *Client) CaptureFrame(ctx context.Context, videoPath string, timestamp time.Duration, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create frame dir: %w", err)
	}
	_, err := c.run(ctx, c.ffmpegBin,
		"-ss", formatSeconds(timestamp),
		"-i", videoPath,
		"-vf", fmt.Sprintf("scale=-1:%d", defaultFrameHeight),
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		outPath,
	)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "capture",
			fmt.Sprintf("capture frame at %s", formatSeconds(timestamp)), err)
	}
	if info, statErr := os.Stat(outPath); statErr != nil || info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "capture",
			fmt.Sprintf("no frame written at %s", formatSeconds(timestamp)), statErr)
	}
	return nil
}

// ExtractAudio transcodes the video's audio track to a compact mono MP3,
// suitable for upload to a transcription API.
func (c *Client) ExtractAudio(ctx context.Context, videoPath, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}
	_, err := c.run(ctx, c.ffmpegBin,
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-b:a", "64k",
		"-y",
		outPath,
	)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "extract-audio", "extract audio track", err)
	}
	return nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func (c *Client) run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := commandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, services.Wrap(services.ErrTimeout, filepath.Base(bin), "run",
				fmt.Sprintf("timed out after %s", c.timeout), nil)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("%s: %s", filepath.Base(bin), lastLines(detail, 3))
	}
	return stdout.Bytes(), nil
}

// lastLines keeps error messages readable; ffmpeg writes its whole banner to
// stderr before the actual failure.
func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
