package subtitle

import (
	"strings"
	"testing"
	"time"
)

const sampleTrack = `1
00:00:01,000 --> 00:00:03,500
Hello world

2
00:00:03,500 --> 00:00:05,250
Second cue
with two lines

3
00:00:05,250 --> 00:00:07,000
Third cue
`

func TestParseWellFormedTrack(t *testing.T) {
	cues, warnings := Parse(sampleTrack)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(cues) != 3 {
		t.Fatalf("got %d cues, want 3", len(cues))
	}
	if cues[0].Start != time.Second || cues[0].End != 3500*time.Millisecond {
		t.Fatalf("cue 0 window = %v..%v", cues[0].Start, cues[0].End)
	}
	if cues[1].Text != "Second cue\nwith two lines" {
		t.Fatalf("cue 1 text = %q", cues[1].Text)
	}
	if cues[2].Index != 3 {
		t.Fatalf("cue 2 index = %d", cues[2].Index)
	}
}

func TestParseSkipsMalformedBlocks(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:02,000
Good cue

not-a-number
garbage line

2
bad timecode here
Text

3
00:00:05,000 --> 00:00:06,000
Another good cue
`
	cues, warnings := Parse(content)
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2 (warnings: %v)", len(cues), warnings)
	}
	if len(warnings) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(warnings), warnings)
	}
	if cues[0].Text != "Good cue" || cues[1].Text != "Another good cue" {
		t.Fatalf("unexpected cues: %+v", cues)
	}
}

func TestParseToleratesVariants(t *testing.T) {
	// Period millisecond separator, missing index line, CRLF endings.
	content := "00:00:01.250 --> 00:00:02.750\r\nNo index line\r\n\r\n5\r\n00:01:00,000 --> 00:01:02,000\r\nIndexed\r\n"
	cues, warnings := Parse(content)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	if cues[0].Start != 1250*time.Millisecond {
		t.Fatalf("start = %v", cues[0].Start)
	}
}

func TestParseCorrectsInvertedWindow(t *testing.T) {
	content := `1
00:00:05,000 --> 00:00:05,000
Zero duration

2
00:00:08,000 --> 00:00:07,000
Inverted
`
	cues, _ := Parse(content)
	if len(cues) != 2 {
		t.Fatalf("got %d cues", len(cues))
	}
	for _, cue := range cues {
		if cue.End <= cue.Start {
			t.Fatalf("cue %d window not corrected: %v..%v", cue.Index, cue.Start, cue.End)
		}
	}
	if cues[0].End != 5*time.Second+minCueDuration {
		t.Fatalf("corrected end = %v", cues[0].End)
	}
}

func TestParseOrdersByStart(t *testing.T) {
	content := `2
00:00:10,000 --> 00:00:11,000
Later

1
00:00:01,000 --> 00:00:02,000
Earlier
`
	cues, _ := Parse(content)
	if len(cues) != 2 {
		t.Fatalf("got %d cues", len(cues))
	}
	if cues[0].Text != "Earlier" || cues[0].Index != 1 {
		t.Fatalf("cues not reordered: %+v", cues)
	}
}

func TestRoundTripPreservesTimecodes(t *testing.T) {
	cues, _ := Parse(sampleTrack)
	rendered := Render(cues)
	again, warnings := Parse(rendered)
	if len(warnings) != 0 {
		t.Fatalf("round-trip warnings: %v", warnings)
	}
	if len(again) != len(cues) {
		t.Fatalf("round-trip cue count %d != %d", len(again), len(cues))
	}
	for i := range cues {
		if again[i].Start != cues[i].Start || again[i].End != cues[i].End {
			t.Fatalf("cue %d timecodes drifted: %v..%v vs %v..%v",
				i, again[i].Start, again[i].End, cues[i].Start, cues[i].End)
		}
		if again[i].Text != cues[i].Text {
			t.Fatalf("cue %d text drifted: %q vs %q", i, again[i].Text, cues[i].Text)
		}
	}
}

func TestFormatTimestampMillisecondPrecision(t *testing.T) {
	d := time.Hour + 23*time.Minute + 45*time.Second + 678*time.Millisecond
	if got := formatTimestamp(d); got != "01:23:45,678" {
		t.Fatalf("formatTimestamp = %q", got)
	}
}

func TestRenderTranslatedFallsBack(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: time.Second, End: 2 * time.Second, Text: "hello", Translated: "你好"},
		{Index: 2, Start: 3 * time.Second, End: 4 * time.Second, Text: "untranslated"},
	}
	out := RenderTranslated(cues)
	if !strings.Contains(out, "你好") {
		t.Fatalf("missing translation: %s", out)
	}
	if !strings.Contains(out, "untranslated") {
		t.Fatalf("missing fallback text: %s", out)
	}
}

func TestParseEmptyInput(t *testing.T) {
	cues, warnings := Parse("")
	if len(cues) != 0 || len(warnings) != 0 {
		t.Fatalf("empty input produced cues=%v warnings=%v", cues, warnings)
	}
}
