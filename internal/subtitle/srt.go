package subtitle

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ParseWarning records a block that could not be parsed and was skipped.
type ParseWarning struct {
	Block  int
	Reason string
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("block %d: %s", w.Block, w.Reason)
}

// Parse reads SRT content into an ordered cue sequence. Malformed blocks are
// skipped and reported as warnings. The returned cues are sorted by start
// time, re-indexed sequentially from 1, and corrected so every cue has a
// positive duration.
func Parse(content string) ([]Cue, []ParseWarning) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	blocks := strings.Split(strings.TrimSpace(normalized), "\n\n")

	var cues []Cue
	var warnings []ParseWarning
	for i, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		cue, err := parseBlock(block)
		if err != nil {
			warnings = append(warnings, ParseWarning{Block: i + 1, Reason: err.Error()})
			continue
		}
		cues = append(cues, cue)
	}

	sort.SliceStable(cues, func(a, b int) bool { return cues[a].Start < cues[b].Start })
	for i := range cues {
		cues[i].Index = i + 1
		if cues[i].End <= cues[i].Start {
			cues[i].End = cues[i].Start + minCueDuration
		}
	}
	return cues, warnings
}

func parseBlock(block string) (Cue, error) {
	lines := strings.Split(block, "\n")
	if len(lines) < 2 {
		return Cue{}, fmt.Errorf("too few lines")
	}

	// The index line is optional; some tracks start blocks with the timecode.
	timeLine := 0
	if !strings.Contains(lines[0], "-->") {
		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil {
			return Cue{}, fmt.Errorf("non-numeric index %q", strings.TrimSpace(lines[0]))
		}
		timeLine = 1
	}
	if timeLine >= len(lines) || !strings.Contains(lines[timeLine], "-->") {
		return Cue{}, fmt.Errorf("missing timecode line")
	}

	parts := strings.SplitN(lines[timeLine], "-->", 2)
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return Cue{}, fmt.Errorf("start timecode: %w", err)
	}
	end, err := parseTimestamp(parts[1])
	if err != nil {
		return Cue{}, fmt.Errorf("end timecode: %w", err)
	}

	text := strings.TrimSpace(strings.Join(lines[timeLine+1:], "\n"))
	if text == "" {
		return Cue{}, fmt.Errorf("empty text")
	}
	return Cue{Start: start, End: end, Text: text}, nil
}

func parseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	// SRT uses a comma before milliseconds; tolerate the period variant.
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(strings.TrimSpace(timeParts[1]))
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || seconds < 0 || millis < 0 {
		return 0, fmt.Errorf("negative timestamp %q", value)
	}
	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
	return total, nil
}

func formatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	millis := d.Milliseconds()
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	seconds := millis / 1_000
	millis -= seconds * 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// Render serializes cues back to SRT using their source text.
func Render(cues []Cue) string {
	return render(cues, func(c Cue) string { return c.Text })
}

// RenderTranslated serializes cues to SRT using translated text where
// available, falling back to the source text.
func RenderTranslated(cues []Cue) string {
	return render(cues, Cue.DisplayText)
}

func render(cues []Cue, text func(Cue) string) string {
	var b strings.Builder
	for i, cue := range cues {
		index := cue.Index
		if index == 0 {
			index = i + 1
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", index, formatTimestamp(cue.Start), formatTimestamp(cue.End), text(cue))
	}
	return b.String()
}
