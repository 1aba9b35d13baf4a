package subtitle

import (
	"strings"
	"testing"
)

func TestRewrapLatinCountsRunesNotBytes(t *testing.T) {
	// Two 20-rune accented words: 41 runes total but 81 bytes. Byte counting
	// would wrap after the first word.
	word := strings.Repeat("é", 20)
	out := Rewrap(word+" "+word, WrapBudget{Latin: 42, CJK: 21})
	if strings.Contains(out, "\n") {
		t.Fatalf("accented text wrapped early: %q", out)
	}
}

func TestRewrapLatinRespectsBudget(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog and keeps on running into the night"
	out := Rewrap(text, DefaultBudget)
	for _, line := range strings.Split(out, "\n") {
		if len([]rune(line)) > DefaultBudget.Latin {
			t.Fatalf("line exceeds budget: %q (%d)", line, len([]rune(line)))
		}
	}
	// No word may be split.
	joined := strings.Join(strings.Fields(strings.ReplaceAll(out, "\n", " ")), " ")
	if joined != text {
		t.Fatalf("rewrap altered words: %q", joined)
	}
}

func TestRewrapNeverSplitsLongWord(t *testing.T) {
	long := strings.Repeat("x", 60)
	out := Rewrap("start "+long+" end", WrapBudget{Latin: 42, CJK: 21})
	if !strings.Contains(out, long) {
		t.Fatalf("long word was split: %q", out)
	}
}

func TestRewrapCJKRespectsBudget(t *testing.T) {
	text := strings.Repeat("這是一段很長的中文字幕內容，", 4)
	out := Rewrap(text, DefaultBudget)
	for _, line := range strings.Split(out, "\n") {
		if n := len([]rune(line)); n > DefaultBudget.CJK {
			t.Fatalf("CJK line exceeds budget: %q (%d runes)", line, n)
		}
	}
}

func TestRewrapCJKPrefersPunctuationBreak(t *testing.T) {
	text := "今天天氣很好，我們一起去公園散步然後吃飯"
	out := Rewrap(text, WrapBudget{Latin: 42, CJK: 10})
	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected a wrap: %q", out)
	}
	if !strings.HasSuffix(lines[0], "，") {
		t.Fatalf("first line should break after punctuation: %q", lines[0])
	}
}

func TestRewrapFlattensExistingBreaks(t *testing.T) {
	out := Rewrap("short\nlines\nalready", DefaultBudget)
	if out != "short lines already" {
		t.Fatalf("Rewrap = %q", out)
	}
}

func TestRewrapEmpty(t *testing.T) {
	if out := Rewrap("   ", DefaultBudget); out != "" {
		t.Fatalf("Rewrap blank = %q", out)
	}
}
