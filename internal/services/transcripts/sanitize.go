package transcripts

import (
	"html"
	"regexp"
	"strings"
)

var (
	// Caption cue tags like [Music], [Applause], (laughs), or the
	// provider's own markers such as [__].
	cueTagPattern = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)

	// Inline markup occasionally left in caption text
	markupPattern = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

	whitespacePattern = regexp.MustCompile(`[ \t]+`)
	blankLinePattern  = regexp.MustCompile(`\n{3,}`)
)

// Sanitize normalizes raw caption or transcription text: cue tags and
// leftover markup are removed, HTML entities decoded, and whitespace
// collapsed. The result may be empty when the input carried no speech.
func Sanitize(text string) string {
	text = html.UnescapeString(text)
	text = cueTagPattern.ReplaceAllString(text, " ")
	text = markupPattern.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespacePattern.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLinePattern.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
