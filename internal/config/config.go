package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StorageDir string `toml:"storage_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Tools contains the external media tool binaries and their call timeouts.
type Tools struct {
	YtDlpBin        string `toml:"ytdlp_bin"`
	FFmpegBin       string `toml:"ffmpeg_bin"`
	FFprobeBin      string `toml:"ffprobe_bin"`
	DownloadTimeout int    `toml:"download_timeout"`
	CaptureTimeout  int    `toml:"capture_timeout"`
}

// Providers contains text-generation provider connection settings. Request
// parameters may override the model and API key per job.
type Providers struct {
	OpenAI  OpenAIProvider `toml:"openai"`
	Gemini  GeminiProvider `toml:"gemini"`
	Ollama  OllamaProvider `toml:"ollama"`
	Timeout int            `toml:"timeout"`
}

// OpenAIProvider configures the OpenAI-compatible chat completion endpoint.
// Pointing BaseURL at OpenRouter or any compatible gateway is supported.
type OpenAIProvider struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// GeminiProvider configures the Google Gemini API.
type GeminiProvider struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// OllamaProvider configures a local Ollama instance.
type OllamaProvider struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// Subtitles contains subtitle selection and optimization settings.
type Subtitles struct {
	LanguagePriority  []string `toml:"language_priority"`
	OptimizeThreshold float64  `toml:"optimize_threshold"`
	LatinLineWidth    int      `toml:"latin_line_width"`
	CJKLineWidth      int      `toml:"cjk_line_width"`
}

// Workflow contains daemon timing and concurrency settings.
type Workflow struct {
	QueuePollInterval    int `toml:"queue_poll_interval"`
	ErrorRetryInterval   int `toml:"error_retry_interval"`
	WorkerCount          int `toml:"worker_count"`
	TranslateConcurrency int `toml:"translate_concurrency"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for slidecast.
//
// Configuration sections by subsystem:
//   - Paths: storage/log directories and API bind address
//   - Tools: yt-dlp and ffmpeg binaries plus call timeouts
//   - Providers: text-generation provider endpoints and credentials
//   - Subtitles: language auto-selection and line-wrap budgets
//   - Workflow: daemon polling intervals and concurrency
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Tools     Tools     `toml:"tools"`
	Providers Providers `toml:"providers"`
	Subtitles Subtitles `toml:"subtitles"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/slidecast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to the given path,
// refusing to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the storage layout the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.StorageDir,
		c.VideosDir(),
		c.FramesDir(),
		c.SubtitlesDir(),
		c.ResultsDir(),
		c.Paths.LogDir,
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// VideosDir returns the directory downloaded videos are staged in.
func (c *Config) VideosDir() string {
	return filepath.Join(c.Paths.StorageDir, "videos")
}

// FramesDir returns the root directory for captured frames.
func (c *Config) FramesDir() string {
	return filepath.Join(c.Paths.StorageDir, "frames")
}

// SubtitlesDir returns the directory subtitle artifacts are written to.
func (c *Config) SubtitlesDir() string {
	return filepath.Join(c.Paths.StorageDir, "subtitles")
}

// ResultsDir returns the directory persisted job results are written to.
func (c *Config) ResultsDir() string {
	return filepath.Join(c.Paths.StorageDir, "results")
}

// DatabasePath returns the job database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.LogDir, "jobs.db")
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	return abs, nil
}
