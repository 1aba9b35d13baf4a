package ytdlp

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"slidecast/internal/services"
)

// fakeYtDlp replaces the yt-dlp invocation with a no-op command and calls
// write with the directory the -o template points at, standing in for the
// files yt-dlp would produce there.
func fakeYtDlp(t *testing.T, write func(dir string)) {
	t.Helper()
	orig := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		for i, arg := range args {
			if arg == "-o" && i+1 < len(args) {
				write(filepath.Dir(args[i+1]))
			}
		}
		return exec.CommandContext(ctx, "true")
	}
	t.Cleanup(func() { commandContext = orig })
}

func writeTrack(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("1\n00:00:00,000 --> 00:00:01,000\n"+name+"\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestSubtitlesIgnoresOtherVideosTracks(t *testing.T) {
	dir := t.TempDir()
	// A track left behind by an earlier video, sorting before the current one.
	writeTrack(t, dir, "aaaa-other.en.srt")

	fakeYtDlp(t, func(dest string) { writeTrack(t, dest, "zzzz-current.en.srt") })

	c := NewClient("yt-dlp", 5)
	path, err := c.Subtitles(context.Background(), "https://example.test/v", "en", "zzzz-current", dir)
	if err != nil {
		t.Fatalf("Subtitles: %v", err)
	}
	if got := filepath.Base(path); got != "zzzz-current.en.srt" {
		t.Fatalf("got %q, want the current video's track", got)
	}
}

func TestSubtitlesSequentialVideosShareDirectory(t *testing.T) {
	dir := t.TempDir()
	c := NewClient("yt-dlp", 5)

	fakeYtDlp(t, func(dest string) { writeTrack(t, dest, "first-video.en.srt") })
	first, err := c.Subtitles(context.Background(), "https://example.test/1", "en", "first-video", dir)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	fakeYtDlp(t, func(dest string) { writeTrack(t, dest, "second-video.en.srt") })
	second, err := c.Subtitles(context.Background(), "https://example.test/2", "en", "second-video", dir)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if filepath.Base(first) != "first-video.en.srt" || filepath.Base(second) != "second-video.en.srt" {
		t.Fatalf("got %q then %q, want each video's own track", first, second)
	}
}

func TestSubtitlesMatchesRegionVariantFile(t *testing.T) {
	dir := t.TempDir()
	fakeYtDlp(t, func(dest string) { writeTrack(t, dest, "vid1.en-US.srt") })

	c := NewClient("yt-dlp", 5)
	path, err := c.Subtitles(context.Background(), "https://example.test/v", "en", "vid1", dir)
	if err != nil {
		t.Fatalf("Subtitles: %v", err)
	}
	if got := filepath.Base(path); got != "vid1.en-US.srt" {
		t.Fatalf("got %q, want vid1.en-US.srt", got)
	}
}

func TestSubtitlesNoTrackProduced(t *testing.T) {
	dir := t.TempDir()
	writeTrack(t, dir, "other.en.srt")
	fakeYtDlp(t, func(string) {})

	c := NewClient("yt-dlp", 5)
	_, err := c.Subtitles(context.Background(), "https://example.test/v", "en", "vid1", dir)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("got %v, want not-found", err)
	}
}

func TestSubtitlesRequiresVideoID(t *testing.T) {
	c := NewClient("yt-dlp", 5)
	_, err := c.Subtitles(context.Background(), "https://example.test/v", "en", "", t.TempDir())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func meta(subs, captions []string) *Metadata {
	return &Metadata{SubtitleLanguages: subs, CaptionLanguages: captions}
}

func TestChooseLanguagePrefersManualTracks(t *testing.T) {
	priority := []string{"zh-TW", "zh-CN", "en", "ja", "ko"}

	lang, auto := ChooseLanguage(meta([]string{"en"}, []string{"zh-TW"}), priority)
	if lang != "en" || auto {
		t.Fatalf("got %q auto=%v, want manual en", lang, auto)
	}
}

func TestChooseLanguageFollowsPriority(t *testing.T) {
	priority := []string{"zh-TW", "zh-CN", "en"}
	lang, _ := ChooseLanguage(meta([]string{"en", "zh-CN"}, nil), priority)
	if lang != "zh-CN" {
		t.Fatalf("got %q, want zh-CN", lang)
	}
}

func TestChooseLanguageFallsBackToCaptions(t *testing.T) {
	priority := []string{"en"}
	lang, auto := ChooseLanguage(meta(nil, []string{"en"}), priority)
	if lang != "en" || !auto {
		t.Fatalf("got %q auto=%v, want auto en", lang, auto)
	}
}

func TestChooseLanguageRegionVariants(t *testing.T) {
	priority := []string{"en"}
	lang, _ := ChooseLanguage(meta([]string{"en-US"}, nil), priority)
	if lang != "en-US" {
		t.Fatalf("got %q, want en-US", lang)
	}
}

func TestChooseLanguageNoneAvailable(t *testing.T) {
	lang, _ := ChooseLanguage(meta(nil, nil), []string{"en"})
	if lang != "" {
		t.Fatalf("got %q, want empty", lang)
	}
}

func TestFormatFor(t *testing.T) {
	cases := map[string]string{
		"":      "bestvideo+bestaudio/best",
		"best":  "bestvideo+bestaudio/best",
		"1080p": "bestvideo[height<=1080]+bestaudio/best[height<=1080]",
		"720p":  "bestvideo[height<=720]+bestaudio/best[height<=720]",
		"junk":  "bestvideo+bestaudio/best",
	}
	for quality, want := range cases {
		if got := formatFor(quality); got != want {
			t.Fatalf("formatFor(%q) = %q, want %q", quality, got, want)
		}
	}
}

func TestLastNonEmptyLine(t *testing.T) {
	if got := lastNonEmptyLine("a\nb\n\n"); got != "b" {
		t.Fatalf("got %q", got)
	}
	if got := lastNonEmptyLine("  "); got != "" {
		t.Fatalf("got %q", got)
	}
}
