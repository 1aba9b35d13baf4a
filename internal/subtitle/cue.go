package subtitle

import "time"

// Cue is one subtitle entry with a time window and text. Translated is empty
// until the translation stage sets it.
type Cue struct {
	Index      int
	Start      time.Duration
	End        time.Duration
	Text       string
	Translated string
}

// DisplayText returns the translated text when present, otherwise the source.
func (c Cue) DisplayText() string {
	if c.Translated != "" {
		return c.Translated
	}
	return c.Text
}

// minCueDuration corrects zero or inverted cue windows. One frame at 25fps.
const minCueDuration = 40 * time.Millisecond
