package pipeline

import (
	"context"

	"slidecast/internal/jobstore"
	"slidecast/internal/keyframe"
	"slidecast/internal/media/ytdlp"
	"slidecast/internal/subtitle"
)

// Step names, in execution order. They double as history entries and as the
// CurrentStep value status queries return.
const (
	StepPrepare          = "prepare"
	StepMetadata         = "metadata"
	StepDownloadVideo    = "download_video"
	StepFetchSubtitles   = "fetch_subtitles"
	StepAITranscription  = "ai_transcription"
	StepSubtitleOptimize = "subtitle_optimize"
	StepSubtitleParse    = "subtitle_parse"
	StepKeyframes        = "keyframe_selection"
	StepTranslate        = "translate"
	StepFrameCapture     = "frame_capture"
	StepFrameOptimize    = "frame_optimize"
	StepAIOutline        = "ai_outline"
	StepFinalize         = "finalize"
)

// step binds a name and progress weight to its implementation. Weights sum
// to 100; skipped steps still contribute their weight so progress stays
// monotone and comparable across configurations.
type step struct {
	name   string
	weight float64
	skip   func(*jobState) bool
	run    func(context.Context, *jobState) error
}

func (r *Runner) steps() []step {
	return []step{
		{name: StepPrepare, weight: 2, run: r.runPrepare},
		{name: StepMetadata, weight: 5, run: r.runMetadata},
		{name: StepDownloadVideo, weight: 18, run: r.runDownload},
		{name: StepFetchSubtitles, weight: 7, skip: useTranscription, run: r.runFetchSubtitles},
		{name: StepAITranscription, weight: 8, skip: skipTranscription, run: r.runTranscription},
		{name: StepSubtitleOptimize, weight: 4, run: r.runSubtitleOptimize},
		{name: StepSubtitleParse, weight: 4, run: r.runSubtitleParse},
		{name: StepKeyframes, weight: 4, run: r.runKeyframes},
		{name: StepTranslate, weight: 16, skip: skipTranslate, run: r.runTranslate},
		{name: StepFrameCapture, weight: 20, run: r.runFrameCapture},
		{name: StepFrameOptimize, weight: 4, run: r.runFrameOptimize},
		{name: StepAIOutline, weight: 6, skip: skipOutline, run: r.runOutline},
		{name: StepFinalize, weight: 2, run: r.runFinalize},
	}
}

func useTranscription(s *jobState) bool  { return s.req.UseAITranscription }
func skipTranscription(s *jobState) bool { return !s.req.UseAITranscription }
func skipTranslate(s *jobState) bool     { return s.req.TranslateTo == "" }
func skipOutline(s *jobState) bool       { return !s.req.GenerateOutline }

// jobState carries data forward between steps. Data flows strictly forward;
// no step re-enters an earlier one.
type jobState struct {
	job *jobstore.Job
	req jobstore.Request

	meta            *ytdlp.Metadata
	videoPath       string
	durationSeconds float64

	rawSubtitles  string
	subtitleLang  string
	autoCaptions  bool
	cues          []subtitle.Cue
	parseWarnings []subtitle.ParseWarning

	frames    []keyframe.FrameSpec
	framesDir string

	subtitlePath   string
	translatedPath string
	outlineText    string
	outlinePath    string

	// progressBase and stepWeight frame the running step's share of the
	// progress scale, for intra-step interpolation.
	progressBase float64
	stepWeight   float64

	warnings []string
}

func (s *jobState) warn(message string) {
	s.warnings = append(s.warnings, message)
}
