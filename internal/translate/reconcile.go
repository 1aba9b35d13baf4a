package translate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	strictLineRe  = regexp.MustCompile(`^\[(\d+)\]\s*(.*)$`)
	markerRe      = regexp.MustCompile(`\[(\d+)\]`)
	enumerationRe = regexp.MustCompile(`^\s*(?:\d+[.):\]]\s*|[-*•]\s*)`)
	fencedBlockRe = regexp.MustCompile("^```[a-zA-Z]*\n?|```$")
	strategyNames = []string{"strict", "lenient", "positional"}
	strategyFuncs = []func(string, int) map[int]string{parseStrict, parseLenient, parsePositional}
)

// reconcile attempts the parse strategies in order and returns the first one
// that resolves every expected index. If none reaches full coverage, the
// strategies' results are merged with earlier strategies taking precedence,
// and the caller backfills whatever is still missing.
func reconcile(response string, expected int) (map[int]string, string) {
	response = strings.TrimSpace(fencedBlockRe.ReplaceAllString(strings.TrimSpace(response), ""))

	partials := make([]map[int]string, len(strategyFuncs))
	for i, parse := range strategyFuncs {
		result := parse(response, expected)
		if len(result) == expected {
			return result, strategyNames[i]
		}
		partials[i] = result
	}

	merged := make(map[int]string, expected)
	for i := len(partials) - 1; i >= 0; i-- {
		for idx, text := range partials[i] {
			merged[idx] = text
		}
	}
	return merged, "merged"
}

// parseStrict expects exactly one "[i] text" line per index.
func parseStrict(response string, expected int) map[int]string {
	result := make(map[int]string)
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := strictLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 0 || idx >= expected {
			continue
		}
		text := strings.TrimSpace(m[2])
		if text == "" {
			continue
		}
		if _, seen := result[idx]; !seen {
			result[idx] = text
		}
	}
	return result
}

// parseLenient treats each [i] marker as a block delimiter and captures all
// text up to the next marker, tolerating translations wrapped across lines.
func parseLenient(response string, expected int) map[int]string {
	locs := markerRe.FindAllStringSubmatchIndex(response, -1)
	if len(locs) == 0 {
		return nil
	}
	result := make(map[int]string)
	for i, loc := range locs {
		idx, err := strconv.Atoi(response[loc[2]:loc[3]])
		if err != nil || idx < 0 || idx >= expected {
			continue
		}
		end := len(response)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		text := strings.TrimSpace(response[loc[1]:end])
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			continue
		}
		if _, seen := result[idx]; !seen {
			result[idx] = text
		}
	}
	return result
}

// parsePositional assigns non-empty lines to indices by position after
// stripping leading enumeration or bullet prefixes. Only used when the
// response carries no index markers at all.
func parsePositional(response string, expected int) map[int]string {
	if markerRe.MatchString(response) {
		return nil
	}
	result := make(map[int]string)
	pos := 0
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(enumerationRe.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" {
			continue
		}
		if pos >= expected {
			break
		}
		result[pos] = line
		pos++
	}
	return result
}
