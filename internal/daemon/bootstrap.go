package daemon

import (
	"log/slog"

	"slidecast/internal/config"
	"slidecast/internal/jobstore"
	"slidecast/internal/media/ffmpeg"
	"slidecast/internal/media/ytdlp"
	"slidecast/internal/pipeline"
	"slidecast/internal/services/translateapi"
	"slidecast/internal/services/whisper"
	"slidecast/internal/storage"
	"slidecast/internal/textgen"
)

// FromConfig wires the production collaborators around an open job store:
// yt-dlp and ffmpeg tool clients, the whisper transcriber, the provider
// factory, and the fallback line translator.
func FromConfig(cfg *config.Config, store *jobstore.Store, logger *slog.Logger) (*Daemon, error) {
	artifacts := storage.New(cfg.VideosDir(), cfg.FramesDir(), cfg.SubtitlesDir(), cfg.ResultsDir())
	video := ytdlp.NewClient(cfg.Tools.YtDlpBin, cfg.Tools.DownloadTimeout)
	media := ffmpeg.NewClient(cfg.Tools.FFmpegBin, cfg.Tools.FFprobeBin, cfg.Tools.CaptureTimeout)
	scriber := whisper.NewClient(whisper.Config{
		APIKey:         cfg.Providers.OpenAI.APIKey,
		BaseURL:        cfg.Providers.OpenAI.BaseURL,
		TimeoutSeconds: cfg.Providers.Timeout,
	})
	providers := func(sel textgen.Selection) (textgen.Provider, error) {
		return textgen.Build(cfg.Providers, sel)
	}

	runner := pipeline.NewRunner(cfg, store, artifacts, video, media, scriber, providers, logger,
		pipeline.WithFallbackTranslator(translateapi.New()))
	manager := pipeline.NewManager(cfg, store, runner, logger)
	return New(cfg, store, artifacts, manager, logger)
}
