package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks a normalized config for values the daemon cannot run with.
// All problems are reported at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.StorageDir) == "" {
		problems = append(problems, "paths.storage_dir must be set")
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		problems = append(problems, "paths.api_bind must be set")
	}
	if strings.TrimSpace(c.Tools.YtDlpBin) == "" {
		problems = append(problems, "tools.ytdlp_bin must be set")
	}
	if strings.TrimSpace(c.Tools.FFmpegBin) == "" {
		problems = append(problems, "tools.ffmpeg_bin must be set")
	}
	if c.Tools.DownloadTimeout <= 0 {
		problems = append(problems, "tools.download_timeout must be positive")
	}
	if c.Tools.CaptureTimeout <= 0 {
		problems = append(problems, "tools.capture_timeout must be positive")
	}
	if c.Providers.Timeout <= 0 {
		problems = append(problems, "providers.timeout must be positive")
	}
	if c.Subtitles.OptimizeThreshold < 0 || c.Subtitles.OptimizeThreshold > 1 {
		problems = append(problems, "subtitles.optimize_threshold must be between 0 and 1")
	}
	if c.Subtitles.LatinLineWidth <= 0 {
		problems = append(problems, "subtitles.latin_line_width must be positive")
	}
	if c.Subtitles.CJKLineWidth <= 0 {
		problems = append(problems, "subtitles.cjk_line_width must be positive")
	}
	if c.Workflow.QueuePollInterval <= 0 {
		problems = append(problems, "workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.WorkerCount <= 0 {
		problems = append(problems, "workflow.worker_count must be positive")
	}
	if c.Workflow.TranslateConcurrency <= 0 {
		problems = append(problems, "workflow.translate_concurrency must be positive")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not one of console, json", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
