package translate

import (
	"fmt"
	"strings"
)

// buildPrompt serializes a batch as a numbered list with per-batch 0-based
// indices, preceded by static translation instructions. The response is
// expected to keep the same [i] markers.
func buildPrompt(texts []string, targetLang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following subtitle lines into %s.\n", targetLang)
	b.WriteString("Rules:\n")
	b.WriteString("- Keep each translation on one line, prefixed with its original [i] marker.\n")
	b.WriteString("- Keep lines at most 42 characters; prefer natural spoken phrasing.\n")
	b.WriteString("- Preserve numbers, names, and inline formatting.\n")
	b.WriteString("- Do not add commentary or merge lines.\n\n")
	for i, text := range texts {
		fmt.Fprintf(&b, "[%d] %s\n", i, strings.ReplaceAll(text, "\n", " "))
	}
	return b.String()
}
