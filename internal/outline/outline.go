// Package outline produces a narrative outline of a transcript through a
// single text-generation call.
package outline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"slidecast/internal/logging"
	"slidecast/internal/services"
	"slidecast/internal/textgen"
)

// maxTranscriptRunes caps the transcript included in the prompt so very long
// videos stay within provider context limits.
const maxTranscriptRunes = 60_000

// Generator summarizes a transcript into a structured outline. Failures are
// surfaced as errors; callers treat the outline as optional value-add and
// decide whether to absorb them.
type Generator struct {
	provider textgen.Provider
	logger   *slog.Logger
}

func NewGenerator(provider textgen.Provider, logger *slog.Logger) *Generator {
	return &Generator{
		provider: provider,
		logger:   logging.NewComponentLogger(logger, "outline"),
	}
}

// Generate sends the concatenated cue text to the provider once and returns
// the outline text.
func (g *Generator) Generate(ctx context.Context, texts []string) (string, error) {
	if g.provider == nil {
		return "", services.Wrap(services.ErrConfiguration, "outline", "generate", "no provider configured", nil)
	}
	transcript := strings.TrimSpace(strings.Join(texts, "\n"))
	if transcript == "" {
		return "", services.Wrap(services.ErrValidation, "outline", "generate", "empty transcript", nil)
	}
	if runes := []rune(transcript); len(runes) > maxTranscriptRunes {
		transcript = string(runes[:maxTranscriptRunes])
	}

	g.logger.Info("generating outline",
		logging.Int("transcript_chars", len(transcript)),
		logging.String("provider", g.provider.Name()))

	response, err := g.provider.Complete(ctx, buildPrompt(transcript))
	if err != nil {
		return "", services.Wrap(services.ErrProvider, "outline", "generate", "provider call failed", err)
	}
	outline := strings.TrimSpace(response)
	if outline == "" {
		return "", services.Wrap(services.ErrProvider, "outline", "generate", "empty response", nil)
	}
	return outline, nil
}

func buildPrompt(transcript string) string {
	return fmt.Sprintf(`Summarize the following video transcript as a structured outline.

Use markdown: a short title line, then nested bullet points grouping the
content by topic in the order it appears. Keep bullets concise and keep the
transcript's original language.

Transcript:
%s`, transcript)
}
