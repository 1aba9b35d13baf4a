package jobstore

import "time"

// Status enumerates the lifecycle states of a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions may leave the status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Request carries the caller-supplied processing parameters for one job.
type Request struct {
	URL                string   `json:"url"`
	Quality            string   `json:"quality,omitempty"`
	SubtitleLanguages  []string `json:"subtitle_languages,omitempty"`
	TranslateTo        string   `json:"translate_to,omitempty"`
	ScreenshotPosition string   `json:"screenshot_position,omitempty"`
	ScreenshotOffset   float64  `json:"screenshot_offset,omitempty"`
	GenerateOutline    bool     `json:"generate_outline,omitempty"`
	AIBackend          string   `json:"ai_backend,omitempty"`
	AIModel            string   `json:"ai_model,omitempty"`
	APIKey             string   `json:"api_key,omitempty"`
	UseAITranscription bool     `json:"use_ai_transcription,omitempty"`
}

// Result aggregates the artifacts a completed job produced.
type Result struct {
	Title                  string   `json:"title,omitempty"`
	VideoID                string   `json:"video_id,omitempty"`
	DurationSeconds        float64  `json:"duration_seconds,omitempty"`
	SubtitleLanguage       string   `json:"subtitle_language,omitempty"`
	SlideCount             int      `json:"slide_count"`
	FramesDir              string   `json:"frames_dir,omitempty"`
	SubtitlePath           string   `json:"subtitle_path,omitempty"`
	TranslatedSubtitlePath string   `json:"translated_subtitle_path,omitempty"`
	OutlinePath            string   `json:"outline_path,omitempty"`
	Warnings               []string `json:"warnings,omitempty"`
}

// Job is one processing request and its current state. The owning worker is
// the only writer; status queries read concurrently through the store.
type Job struct {
	ID              string
	Status          Status
	CurrentStep     string
	Progress        float64
	Message         string
	ErrorMessage    string
	CancelRequested bool
	Request         Request
	Result          *Result
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HistoryEntry is one append-only audit record of a job transition.
type HistoryEntry struct {
	Timestamp time.Time
	Step      string
	Progress  float64
	Message   string
}
