package subtitle

import "strings"

// maxMergedRunes bounds a merged cue so a track without sentence punctuation
// cannot collapse into one enormous cue.
const maxMergedRunes = 200

// Optimize merges consecutive cues into sentence-level cues. Auto-generated
// tracks often split sentences across many short cues; merging them produces
// fewer, more readable slides. The merged track is adopted only when it
// reduces the cue count by at least threshold (a fraction, e.g. 0.30);
// otherwise the original cues are returned unchanged.
func Optimize(cues []Cue, threshold float64) ([]Cue, bool) {
	if len(cues) < 2 {
		return cues, false
	}

	var merged []Cue
	current := cues[0]
	runeCount := len([]rune(current.Text))
	for _, next := range cues[1:] {
		done := endsSentenceText(current.Text)
		nextRunes := len([]rune(next.Text))
		if done || runeCount+nextRunes > maxMergedRunes {
			merged = append(merged, current)
			current = next
			runeCount = nextRunes
			continue
		}
		current.Text = joinCueText(current.Text, next.Text)
		current.End = next.End
		runeCount += nextRunes
	}
	merged = append(merged, current)

	reduction := 1 - float64(len(merged))/float64(len(cues))
	if reduction < threshold {
		return cues, false
	}
	for i := range merged {
		merged[i].Index = i + 1
	}
	return merged, true
}

func endsSentenceText(text string) bool {
	trimmed := strings.TrimRight(text, "\"')»」』 ")
	if trimmed == "" {
		return false
	}
	runes := []rune(trimmed)
	switch runes[len(runes)-1] {
	case '.', '!', '?', '。', '！', '？', '…':
		return true
	}
	return false
}

func joinCueText(a, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if needsSpace(a, b) {
		return a + " " + b
	}
	return a + b
}
