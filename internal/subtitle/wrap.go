package subtitle

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// WrapBudget holds per-script line budgets. Latin counts characters per line;
// CJK counts ideographs, each of which occupies roughly double the visual
// width of a Latin character.
type WrapBudget struct {
	Latin int
	CJK   int
}

// DefaultBudget matches common subtitle rendering guidelines.
var DefaultBudget = WrapBudget{Latin: 42, CJK: 21}

// Rewrap reflows cue text so no line exceeds the script-aware budget. Latin
// text is never split mid-word; CJK text breaks preferentially at punctuation.
func Rewrap(text string, budget WrapBudget) string {
	if budget.Latin <= 0 {
		budget.Latin = DefaultBudget.Latin
	}
	if budget.CJK <= 0 {
		budget.CJK = DefaultBudget.CJK
	}
	flat := flatten(text)
	if flat == "" {
		return ""
	}
	if isMostlyWide(flat) {
		return wrapCJK(flat, budget.CJK*2)
	}
	return wrapLatin(flat, budget.Latin)
}

// RewrapCues applies Rewrap to every cue's source text in place.
func RewrapCues(cues []Cue, budget WrapBudget) {
	for i := range cues {
		cues[i].Text = Rewrap(cues[i].Text, budget)
	}
}

// flatten collapses existing line breaks so the text can be re-measured.
// Wide-script lines are joined without a separator, Latin lines with a space.
func flatten(text string) string {
	lines := strings.Fields(strings.ReplaceAll(text, "\n", " "))
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	for i, part := range lines {
		if i > 0 && needsSpace(lines[i-1], part) {
			b.WriteByte(' ')
		}
		b.WriteString(part)
	}
	return b.String()
}

func needsSpace(prev, next string) bool {
	prevRunes := []rune(prev)
	nextRunes := []rune(next)
	if len(prevRunes) == 0 || len(nextRunes) == 0 {
		return true
	}
	return !(isWideRune(prevRunes[len(prevRunes)-1]) && isWideRune(nextRunes[0]))
}

func wrapLatin(text string, limit int) string {
	words := strings.Fields(text)
	var lines []string
	var current strings.Builder
	length := 0 // runes on the current line, not bytes
	for _, word := range words {
		wordLen := len([]rune(word))
		if length == 0 {
			current.WriteString(word)
			length = wordLen
			continue
		}
		if length+1+wordLen > limit {
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
			length = wordLen
			continue
		}
		current.WriteByte(' ')
		current.WriteString(word)
		length += 1 + wordLen
		// Prefer a break after sentence punctuation once past half budget.
		if endsSentence(word) && length >= limit/2 {
			lines = append(lines, current.String())
			current.Reset()
			length = 0
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return strings.Join(lines, "\n")
}

func wrapCJK(text string, columns int) string {
	runes := []rune(text)
	var lines []string
	var current []rune
	cols := 0
	lastBreak := -1 // index into current after a punctuation rune
	for _, r := range runes {
		current = append(current, r)
		cols += runeColumns(r)
		if isBreakPunct(r) {
			lastBreak = len(current)
		}
		if cols < columns {
			continue
		}
		cut := len(current)
		if lastBreak > len(current)/2 {
			cut = lastBreak
		}
		lines = append(lines, string(current[:cut]))
		current = append([]rune(nil), current[cut:]...)
		cols = 0
		for _, rest := range current {
			cols += runeColumns(rest)
		}
		lastBreak = -1
		for i, rest := range current {
			if isBreakPunct(rest) {
				lastBreak = i + 1
			}
		}
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	return strings.Join(lines, "\n")
}

func isMostlyWide(text string) bool {
	wide, total := 0, 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if isWideRune(r) {
			wide++
		}
	}
	return total > 0 && wide*2 > total
}

func isWideRune(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}

func runeColumns(r rune) int {
	if isWideRune(r) {
		return 2
	}
	return 1
}

func endsSentence(word string) bool {
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") ||
		strings.HasSuffix(word, "?") || strings.HasSuffix(word, ";")
}

func isBreakPunct(r rune) bool {
	switch r {
	case '，', '。', '！', '？', '、', '；', '：', '…', ',', '.', '!', '?', ';':
		return true
	}
	return false
}
