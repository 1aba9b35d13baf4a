// Package deps reports the availability of the external tools the pipeline
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"slidecast/internal/config"
)

// Requirement defines an external binary slidecast relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of one requirement.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// FromConfig lists the tool requirements for the configured binaries.
func FromConfig(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "yt-dlp", Command: cfg.Tools.YtDlpBin, Description: "video metadata, download, and subtitle fetch"},
		{Name: "ffmpeg", Command: cfg.Tools.FFmpegBin, Description: "frame capture and audio extraction"},
		{Name: "ffprobe", Command: cfg.Tools.FFprobeBin, Description: "video duration probe"},
	}
}

// Check resolves each requirement on PATH and reports availability.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{Requirement: req}
		status.Command = strings.TrimSpace(req.Command)
		switch {
		case status.Command == "":
			status.Detail = "command not configured"
		default:
			if _, err := exec.LookPath(status.Command); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", status.Command)
			} else {
				status.Available = true
			}
		}
		results = append(results, status)
	}
	return results
}

// Missing filters statuses down to unavailable required tools.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
