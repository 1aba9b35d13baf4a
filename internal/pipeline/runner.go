package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"slidecast/internal/config"
	"slidecast/internal/jobstore"
	"slidecast/internal/keyframe"
	"slidecast/internal/logging"
	"slidecast/internal/media/ytdlp"
	"slidecast/internal/outline"
	"slidecast/internal/services"
	"slidecast/internal/storage"
	"slidecast/internal/subtitle"
	"slidecast/internal/textgen"
	"slidecast/internal/translate"
)

// Runner executes one job at a time through the full step table.
type Runner struct {
	cfg       *config.Config
	store     *jobstore.Store
	artifacts *storage.Store
	video     VideoSource
	media     MediaTools
	scriber   Transcriber
	providers ProviderFactory
	fallback  LineTranslator
	logger    *slog.Logger
}

// RunnerOption adjusts optional runner collaborators.
type RunnerOption func(*Runner)

// WithFallbackTranslator installs the line translator used when a
// translation request names no AI backend.
func WithFallbackTranslator(translator LineTranslator) RunnerOption {
	return func(r *Runner) {
		r.fallback = translator
	}
}

// NewRunner wires a runner from its collaborators.
func NewRunner(
	cfg *config.Config,
	store *jobstore.Store,
	artifacts *storage.Store,
	video VideoSource,
	media MediaTools,
	scriber Transcriber,
	providers ProviderFactory,
	logger *slog.Logger,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		cfg:       cfg,
		store:     store,
		artifacts: artifacts,
		video:     video,
		media:     media,
		scriber:   scriber,
		providers: providers,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives a claimed job to a terminal state. The returned error reports
// infrastructure trouble talking to the job store; job-level failures are
// persisted on the job itself and return nil.
func (r *Runner) Run(ctx context.Context, job *jobstore.Job) error {
	ctx = services.WithJobID(ctx, job.ID)
	state := &jobState{job: job, req: job.Request}
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("job started", logging.String("url", state.req.URL))

	progress := 0.0
	for _, st := range r.steps() {
		cancelled, err := r.store.CancelRequested(ctx, job.ID)
		if err != nil {
			return fmt.Errorf("check cancellation: %w", err)
		}
		if cancelled {
			logger.Info("job cancelled", logging.String(logging.FieldStep, st.name))
			return r.store.MarkCancelled(ctx, job.ID, st.name)
		}

		if st.skip != nil && st.skip(state) {
			progress += st.weight
			continue
		}

		if err := r.store.UpdateProgress(ctx, job.ID, st.name, progress, "running "+st.name); err != nil {
			return fmt.Errorf("record step start: %w", err)
		}

		state.progressBase = progress
		state.stepWeight = st.weight
		stepCtx := services.WithStep(ctx, st.name)
		if err := st.run(stepCtx, state); err != nil {
			logging.WithContext(stepCtx, r.logger).Error("step failed", logging.Error(err))
			return r.store.MarkFailed(ctx, job.ID, st.name, err.Error())
		}
		progress += st.weight
	}

	result := r.buildResult(state)
	if err := r.store.MarkCompleted(ctx, job.ID, result); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	logger.Info("job completed",
		logging.Int("slides", result.SlideCount),
		logging.Int("warnings", len(result.Warnings)))
	return nil
}

func (r *Runner) runPrepare(_ context.Context, s *jobState) error {
	if s.req.URL == "" {
		return services.Wrap(services.ErrValidation, "pipeline", StepPrepare, "request url required", nil)
	}
	return r.artifacts.CheckFreeSpace()
}

func (r *Runner) runMetadata(ctx context.Context, s *jobState) error {
	meta, err := r.video.Metadata(ctx, s.req.URL)
	if err != nil {
		return err
	}
	s.meta = meta
	s.durationSeconds = meta.DurationSeconds
	return nil
}

func (r *Runner) runDownload(ctx context.Context, s *jobState) error {
	path, err := r.video.Download(ctx, s.req.URL, s.req.Quality, r.artifacts.VideosDir())
	if err != nil {
		return err
	}
	s.videoPath = path
	if s.durationSeconds <= 0 {
		if seconds, err := r.media.Duration(ctx, path); err == nil {
			s.durationSeconds = seconds
		}
	}
	return nil
}

func (r *Runner) runFetchSubtitles(ctx context.Context, s *jobState) error {
	priority := s.req.SubtitleLanguages
	if len(priority) == 0 {
		priority = r.cfg.Subtitles.LanguagePriority
	}
	lang, auto := ytdlp.ChooseLanguage(s.meta, priority)
	if lang == "" {
		return services.Wrap(services.ErrNotFound, "pipeline", StepFetchSubtitles,
			"no subtitle track in preferred languages; enable AI transcription to process this video", nil)
	}
	path, err := r.video.Subtitles(ctx, s.req.URL, lang, s.meta.ID, r.artifacts.VideosDir())
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read subtitle file: %w", err)
	}
	s.rawSubtitles = string(raw)
	s.subtitleLang = lang
	s.autoCaptions = auto
	if auto {
		s.warn("using auto-generated captions for " + lang)
	}
	return nil
}

// runTranscription extracts the audio track and transcribes it. When
// transcription fails the job falls back to platform subtitles before
// giving up.
func (r *Runner) runTranscription(ctx context.Context, s *jobState) error {
	transcript, err := r.transcribe(ctx, s)
	if err != nil {
		s.warn("transcription failed, falling back to platform subtitles: " + err.Error())
		if fetchErr := r.runFetchSubtitles(ctx, s); fetchErr != nil {
			return services.Wrap(services.ErrExternalTool, "pipeline", StepAITranscription,
				"transcription failed and no platform subtitles available", err)
		}
		return nil
	}
	s.rawSubtitles = transcript
	s.subtitleLang = "auto"
	return nil
}

func (r *Runner) transcribe(ctx context.Context, s *jobState) (string, error) {
	if r.scriber == nil {
		return "", services.Wrap(services.ErrConfiguration, "pipeline", StepAITranscription,
			"transcription requested but no transcriber configured", nil)
	}
	audioPath := filepath.Join(filepath.Dir(s.videoPath), s.job.ID+"_audio.mp3")
	if err := r.media.ExtractAudio(ctx, s.videoPath, audioPath); err != nil {
		return "", err
	}
	defer os.Remove(audioPath)
	return r.scriber.Transcribe(ctx, audioPath)
}

func (r *Runner) runSubtitleOptimize(_ context.Context, s *jobState) error {
	cues, warnings := subtitle.Parse(s.rawSubtitles)
	s.parseWarnings = warnings
	for _, w := range warnings {
		s.warn("subtitle " + w.String() + " skipped")
	}
	if len(cues) == 0 {
		return services.Wrap(services.ErrValidation, "pipeline", StepSubtitleOptimize,
			"subtitle track contains no usable cues", nil)
	}

	optimized, adopted := subtitle.Optimize(cues, r.cfg.Subtitles.OptimizeThreshold)
	if adopted {
		r.logger.Info("optimized subtitle track adopted",
			logging.Int("before", len(cues)),
			logging.Int("after", len(optimized)))
	}
	s.cues = optimized
	return nil
}

func (r *Runner) runSubtitleParse(_ context.Context, s *jobState) error {
	budget := subtitle.WrapBudget{
		Latin: r.cfg.Subtitles.LatinLineWidth,
		CJK:   r.cfg.Subtitles.CJKLineWidth,
	}
	subtitle.RewrapCues(s.cues, budget)

	path, err := r.artifacts.WriteSubtitle(s.job.ID, "source", subtitle.Render(s.cues))
	if err != nil {
		return err
	}
	s.subtitlePath = path
	return nil
}

func (r *Runner) runKeyframes(_ context.Context, s *jobState) error {
	position, err := keyframe.ParsePosition(s.req.ScreenshotPosition)
	if err != nil {
		return services.Wrap(services.ErrValidation, "pipeline", StepKeyframes, err.Error(), nil)
	}
	offset := time.Duration(s.req.ScreenshotOffset * float64(time.Second))
	duration := time.Duration(s.durationSeconds * float64(time.Second))
	s.frames = keyframe.Select(s.cues, position, offset, duration)
	return nil
}

// runTranslate fills in cue translations. Requests naming an AI backend go
// through the batch engine; requests without one use the line translator.
// Translation is best effort: provider trouble degrades to passthrough
// instead of failing the job.
func (r *Runner) runTranslate(ctx context.Context, s *jobState) error {
	texts := make([]string, len(s.cues))
	for i, cue := range s.cues {
		texts[i] = cue.Text
	}

	var translations []string
	if strings.TrimSpace(s.req.AIBackend) == "" {
		translations = r.translateLines(ctx, s, texts)
	} else {
		var err error
		translations, err = r.translateBatched(ctx, s, texts)
		if err != nil {
			return err
		}
	}
	if translations == nil {
		return nil
	}
	for i := range s.cues {
		s.cues[i].Translated = translations[i]
	}

	path, err := r.artifacts.WriteSubtitle(s.job.ID, "translated", subtitle.RenderTranslated(s.cues))
	if err != nil {
		return err
	}
	s.translatedPath = path
	return nil
}

func (r *Runner) translateBatched(ctx context.Context, s *jobState, texts []string) ([]string, error) {
	provider, err := r.providers(textgen.Selection{
		Backend: s.req.AIBackend,
		Model:   s.req.AIModel,
		APIKey:  s.req.APIKey,
	})
	if err != nil {
		s.warn("translation skipped: " + err.Error())
		return nil, nil
	}
	engine := translate.NewEngine(provider, r.cfg.Workflow.TranslateConcurrency, r.logger)
	result, err := engine.Translate(ctx, texts, s.req.TranslateTo)
	if err != nil {
		return nil, err
	}
	for _, event := range result.Events {
		switch event.Kind {
		case translate.EventPassthrough:
			s.warn(fmt.Sprintf("translation batch %d kept source text: %s", event.Batch, event.Detail))
		case translate.EventBackfill:
			s.warn(fmt.Sprintf("cue %d backfilled with source text", event.CueIndex))
		}
	}
	return result.Translations, nil
}

func (r *Runner) translateLines(ctx context.Context, s *jobState, texts []string) []string {
	if r.fallback == nil {
		s.warn("translation skipped: no translator configured")
		return nil
	}
	out, failed := r.fallback.TranslateAll(ctx, texts, s.req.TranslateTo, r.cfg.Workflow.TranslateConcurrency)
	for _, idx := range failed {
		s.warn(fmt.Sprintf("cue %d kept source text", idx))
	}
	return out
}

func (r *Runner) runFrameCapture(ctx context.Context, s *jobState) error {
	framesDir, err := r.artifacts.JobFramesDir(s.job.ID)
	if err != nil {
		return err
	}
	s.framesDir = framesDir
	for i, frame := range s.frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		outPath := storage.FramePath(framesDir, frame.Index)
		if err := r.media.CaptureFrame(ctx, s.videoPath, frame.Timestamp, outPath); err != nil {
			// A slide deck with missing frames is not a valid result.
			return err
		}
		// Interpolate within this step's weight span; capture dominates the
		// wall clock on long videos.
		fraction := float64(i+1) / float64(len(s.frames))
		_ = r.store.SetProgress(ctx, s.job.ID, s.progressBase+s.stepWeight*fraction)
	}
	return nil
}

func (r *Runner) runFrameOptimize(_ context.Context, s *jobState) error {
	for _, frame := range s.frames {
		info, err := os.Stat(storage.FramePath(s.framesDir, frame.Index))
		if err != nil || info.Size() == 0 {
			return services.Wrap(services.ErrExternalTool, "pipeline", StepFrameOptimize,
				fmt.Sprintf("frame %d missing after capture", frame.Index), err)
		}
	}
	return nil
}

func (r *Runner) runOutline(ctx context.Context, s *jobState) error {
	provider, err := r.providers(textgen.Selection{
		Backend: s.req.AIBackend,
		Model:   s.req.AIModel,
		APIKey:  s.req.APIKey,
	})
	if err != nil {
		s.warn("outline skipped: " + err.Error())
		return nil
	}

	texts := make([]string, len(s.cues))
	for i, cue := range s.cues {
		texts[i] = cue.DisplayText()
	}
	text, err := outline.NewGenerator(provider, r.logger).Generate(ctx, texts)
	if err != nil {
		// Outline generation is optional value-add; its absence is reported
		// but never blocks finalize.
		s.warn("outline generation failed: " + err.Error())
		return nil
	}
	s.outlineText = text

	path, err := r.artifacts.WriteOutline(s.job.ID, text)
	if err != nil {
		return err
	}
	s.outlinePath = path
	return nil
}

func (r *Runner) runFinalize(_ context.Context, s *jobState) error {
	result := r.buildResult(s)
	if _, err := r.artifacts.WriteResult(s.job.ID, result); err != nil {
		return err
	}
	return nil
}

func (r *Runner) buildResult(s *jobState) *jobstore.Result {
	result := &jobstore.Result{
		DurationSeconds:        s.durationSeconds,
		SubtitleLanguage:       s.subtitleLang,
		SlideCount:             len(s.frames),
		FramesDir:              s.framesDir,
		SubtitlePath:           s.subtitlePath,
		TranslatedSubtitlePath: s.translatedPath,
		OutlinePath:            s.outlinePath,
		Warnings:               s.warnings,
	}
	if s.meta != nil {
		result.Title = s.meta.Title
		result.VideoID = s.meta.ID
	}
	return result
}
