package summaries

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTranscript(t *testing.T) {
	t.Run("under limit stays whole", func(t *testing.T) {
		text := strings.Repeat("some words. ", 100)
		segments := SplitTranscript(text, 10000)
		require.Len(t, segments, 1)
		assert.Equal(t, text, segments[0])
	})

	t.Run("at limit stays whole", func(t *testing.T) {
		text := strings.Repeat("a", 500)
		segments := SplitTranscript(text, 500)
		require.Len(t, segments, 1)
	})

	t.Run("just over limit yields two segments", func(t *testing.T) {
		sentence := "This sentence contains exactly fifty characters!! "
		text := strings.Repeat(sentence, 12000) // 600,000 chars
		segments := SplitTranscript(text, 500000)

		require.Len(t, segments, 2)
		for i, seg := range segments {
			assert.LessOrEqual(t, len(seg), 500000, "segment %d over limit", i)
		}
	})

	t.Run("splits on sentence boundaries", func(t *testing.T) {
		sentence := "Short sentence here. "
		text := strings.Repeat(sentence, 100)
		segments := SplitTranscript(text, 500)

		require.Greater(t, len(segments), 1)
		for i, seg := range segments[:len(segments)-1] {
			assert.True(t, strings.HasSuffix(seg, "."), "segment %d does not end on a sentence: %q", i, seg[len(seg)-20:])
		}
	})

	t.Run("segments do not overlap and cover the text", func(t *testing.T) {
		sentence := "Another plain sentence for the splitter. "
		text := strings.TrimSpace(strings.Repeat(sentence, 200))
		segments := SplitTranscript(text, 1000)

		rejoined := strings.Join(segments, " ")
		assert.Equal(t, strings.Fields(text), strings.Fields(rejoined))
	})

	t.Run("no sentence boundary falls back to whitespace", func(t *testing.T) {
		text := strings.TrimSpace(strings.Repeat("word ", 300))
		segments := SplitTranscript(text, 400)
		require.Greater(t, len(segments), 1)
		for _, seg := range segments {
			assert.LessOrEqual(t, len(seg), 400)
			assert.NotContains(t, []string{""}, seg)
		}
	})

	t.Run("unbroken text splits hard", func(t *testing.T) {
		text := strings.Repeat("x", 1000)
		segments := SplitTranscript(text, 400)
		require.Len(t, segments, 3)
		assert.Equal(t, 400, len(segments[0]))
	})

	t.Run("hard split lands on a rune boundary", func(t *testing.T) {
		// ä is two bytes, so an odd limit would land mid-rune
		text := strings.Repeat("ä", 500)
		segments := SplitTranscript(text, 401)

		for i, seg := range segments {
			assert.True(t, utf8.ValidString(seg), "segment %d contains a torn rune", i)
			assert.LessOrEqual(t, len(seg), 401)
		}
		assert.Equal(t, text, strings.Join(segments, ""))
	})
}
