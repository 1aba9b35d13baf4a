package config

const (
	defaultStorageDir = "~/.local/share/slidecast"
	defaultLogDir     = "~/.local/share/slidecast/logs"
	defaultAPIBind    = "127.0.0.1:8764"

	defaultYtDlpBin   = "yt-dlp"
	defaultFFmpegBin  = "ffmpeg"
	defaultFFprobeBin = "ffprobe"

	defaultDownloadTimeout = 1800
	defaultCaptureTimeout  = 120
	defaultProviderTimeout = 180

	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "qwen2.5"

	defaultOptimizeThreshold = 0.30
	defaultLatinLineWidth    = 42
	defaultCJKLineWidth      = 21

	defaultQueuePollInterval    = 2
	defaultErrorRetryInterval   = 10
	defaultWorkerCount          = 2
	defaultTranslateConcurrency = 4
)

// Default returns the repository default configuration. Paths are left in
// their unexpanded form; Load and normalize take care of expansion.
func Default() Config {
	return Config{
		Paths: Paths{
			StorageDir: defaultStorageDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Tools: Tools{
			YtDlpBin:        defaultYtDlpBin,
			FFmpegBin:       defaultFFmpegBin,
			FFprobeBin:      defaultFFprobeBin,
			DownloadTimeout: defaultDownloadTimeout,
			CaptureTimeout:  defaultCaptureTimeout,
		},
		Providers: Providers{
			OpenAI: OpenAIProvider{
				BaseURL: defaultOpenAIBaseURL,
				Model:   defaultOpenAIModel,
			},
			Gemini: GeminiProvider{
				Model: defaultGeminiModel,
			},
			Ollama: OllamaProvider{
				BaseURL: defaultOllamaBaseURL,
				Model:   defaultOllamaModel,
			},
			Timeout: defaultProviderTimeout,
		},
		Subtitles: Subtitles{
			LanguagePriority:  []string{"zh-TW", "zh-CN", "en", "ja", "ko"},
			OptimizeThreshold: defaultOptimizeThreshold,
			LatinLineWidth:    defaultLatinLineWidth,
			CJKLineWidth:      defaultCJKLineWidth,
		},
		Workflow: Workflow{
			QueuePollInterval:    defaultQueuePollInterval,
			ErrorRetryInterval:   defaultErrorRetryInterval,
			WorkerCount:          defaultWorkerCount,
			TranslateConcurrency: defaultTranslateConcurrency,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
