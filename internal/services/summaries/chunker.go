package summaries

import (
	"strings"
	"unicode/utf8"
)

// sentence terminators the splitter searches for, in preference order
var sentenceBreaks = []string{". ", "! ", "? ", "\n"}

// SplitTranscript splits text into non-overlapping segments of at most
// maxChars characters each. Splits land on sentence boundaries when one
// exists in the second half of the window, otherwise on the nearest
// whitespace, otherwise mid-word. Text at or under the limit comes back
// as a single segment.
func SplitTranscript(text string, maxChars int) []string {
	if maxChars <= 0 || len(text) <= maxChars {
		return []string{text}
	}

	var segments []string
	remaining := text
	for len(remaining) > maxChars {
		cut := findSplitPoint(remaining, maxChars)
		segments = append(segments, strings.TrimSpace(remaining[:cut]))
		remaining = strings.TrimSpace(remaining[cut:])
	}
	if remaining != "" {
		segments = append(segments, remaining)
	}
	return segments
}

// findSplitPoint returns the index to cut at, at most maxChars. Only the
// second half of the window is searched so no segment degenerates into a
// fragment far below the limit.
func findSplitPoint(text string, maxChars int) int {
	window := text[:maxChars]
	floor := maxChars / 2

	best := -1
	for _, br := range sentenceBreaks {
		if idx := strings.LastIndex(window, br); idx >= floor && idx+len(br) > best {
			best = idx + len(br)
		}
	}
	if best > 0 {
		return best
	}

	if idx := strings.LastIndexByte(window, ' '); idx >= floor {
		return idx + 1
	}

	// Mid-word cut: back up so a multi-byte rune is never split
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return cut
}
