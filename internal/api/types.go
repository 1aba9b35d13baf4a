// Package api defines the wire types of the daemon HTTP API and a client
// for them. The daemon serves these shapes; the CLI consumes them.
package api

import (
	"time"

	"slidecast/internal/jobstore"
)

// Job is the wire shape of one job in status and history responses.
type Job struct {
	ID              string           `json:"job_id"`
	Status          jobstore.Status  `json:"status"`
	CurrentStep     string           `json:"current_step,omitempty"`
	Progress        float64          `json:"progress"`
	Message         string           `json:"message,omitempty"`
	Error           string           `json:"error,omitempty"`
	CancelRequested bool             `json:"cancel_requested,omitempty"`
	Request         jobstore.Request `json:"request"`
	Result          *jobstore.Result `json:"result,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	History         []HistoryEntry   `json:"history,omitempty"`
}

// HistoryEntry is one audit record in a job status response.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Step      string    `json:"step"`
	Progress  float64   `json:"progress"`
	Message   string    `json:"message"`
}

// ProcessResponse acknowledges an accepted processing request.
type ProcessResponse struct {
	JobID  string          `json:"job_id"`
	Status jobstore.Status `json:"status"`
}

// HistoryResponse lists processed videos.
type HistoryResponse struct {
	Videos []Job `json:"videos"`
}

// HealthResponse reports daemon liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Running bool   `json:"running"`
}

// FromJob converts a stored job and its optional history to the wire shape.
func FromJob(job *jobstore.Job, history []jobstore.HistoryEntry) Job {
	payload := Job{
		ID:              job.ID,
		Status:          job.Status,
		CurrentStep:     job.CurrentStep,
		Progress:        job.Progress,
		Message:         job.Message,
		Error:           job.ErrorMessage,
		CancelRequested: job.CancelRequested,
		Request:         job.Request,
		Result:          job.Result,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
	for _, entry := range history {
		payload.History = append(payload.History, HistoryEntry{
			Timestamp: entry.Timestamp,
			Step:      entry.Step,
			Progress:  entry.Progress,
			Message:   entry.Message,
		})
	}
	return payload
}
