// Package keyframe maps subtitle cues to capture timestamps.
package keyframe

import (
	"fmt"
	"time"

	"slidecast/internal/subtitle"
)

// Position selects where inside a cue's window the capture lands.
type Position string

const (
	PositionStart  Position = "start"
	PositionMiddle Position = "middle"
	PositionEnd    Position = "end"
)

// ParsePosition validates a position string, defaulting empty input to middle.
func ParsePosition(value string) (Position, error) {
	switch Position(value) {
	case PositionStart, PositionMiddle, PositionEnd:
		return Position(value), nil
	case "":
		return PositionMiddle, nil
	}
	return "", fmt.Errorf("invalid screenshot position %q", value)
}

// FrameSpec names one still image to capture. CueIndex back-references the
// cue the timestamp was derived from.
type FrameSpec struct {
	Index     int
	Timestamp time.Duration
	CueIndex  int
}

// Select computes one FrameSpec per cue. The capture time is the cue's
// position-derived base time shifted by offset and clamped to the video
// bounds. The offset may deliberately land outside the cue's own window.
// Consecutive frames resolving to the same timestamp are kept; deduplication
// is the capture tool's concern, and dropping one would break cue-to-frame
// traceability.
func Select(cues []subtitle.Cue, position Position, offset time.Duration, videoDuration time.Duration) []FrameSpec {
	specs := make([]FrameSpec, 0, len(cues))
	for i, cue := range cues {
		ts := baseTime(position, cue) + offset
		if ts < 0 {
			ts = 0
		}
		if videoDuration > 0 && ts > videoDuration {
			ts = videoDuration
		}
		specs = append(specs, FrameSpec{Index: i, Timestamp: ts, CueIndex: cue.Index})
	}
	return specs
}

func baseTime(position Position, cue subtitle.Cue) time.Duration {
	switch position {
	case PositionStart:
		return cue.Start
	case PositionEnd:
		return cue.End
	default:
		return (cue.Start + cue.End) / 2
	}
}
