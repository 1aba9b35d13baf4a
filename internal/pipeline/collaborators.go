package pipeline

import (
	"context"
	"time"

	"slidecast/internal/media/ytdlp"
	"slidecast/internal/textgen"
)

// VideoSource fetches video metadata, media, and platform subtitle tracks.
type VideoSource interface {
	Metadata(ctx context.Context, url string) (*ytdlp.Metadata, error)
	Download(ctx context.Context, url, quality, destDir string) (string, error)
	Subtitles(ctx context.Context, url, lang, videoID, destDir string) (string, error)
}

// MediaTools inspects downloaded videos and cuts stills from them.
type MediaTools interface {
	Duration(ctx context.Context, videoPath string) (float64, error)
	CaptureFrame(ctx context.Context, videoPath string, timestamp time.Duration, outPath string) error
	ExtractAudio(ctx context.Context, videoPath, outPath string) error
}

// Transcriber produces an SRT transcript from an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// ProviderFactory resolves a request's provider selection into a usable
// text-generation backend.
type ProviderFactory func(sel textgen.Selection) (textgen.Provider, error)

// LineTranslator translates cue texts one line at a time without an AI
// backend. Requests that name no backend fall back to it.
type LineTranslator interface {
	TranslateAll(ctx context.Context, texts []string, target string, concurrency int) (out []string, failed []int)
}
