package summaries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/digest-api/internal/models"
	"github.com/killallgit/digest-api/internal/services/generative"
)

// fakeGenerator returns queued responses in order, then repeats the last
type fakeGenerator struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	idx := f.calls
	f.calls++
	f.prompts = append(f.prompts, userPrompt)
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	return f.responses[idx], err
}

func validSummaryJSON(category, coreMessage string) string {
	return fmt.Sprintf(`{
		"category": %q,
		"core_message": %q,
		"detailed_summary": "Eine ausführliche Zusammenfassung des Videos.",
		"key_takeaways": ["Erkenntnis eins"],
		"timestamps": [{"offset_seconds": 90, "description": "Einleitung"}],
		"action_items": []
	}`, category, coreMessage)
}

func testOptions() Options {
	return Options{MaxAttempts: 3, RetryDelay: time.Millisecond}
}

func TestSummarize_Success(t *testing.T) {
	gen := &fakeGenerator{responses: []string{validSummaryJSON("Health", "Schlaf ist wichtig.")}}
	svc := NewService(gen, testOptions())

	summary, err := svc.Summarize(context.Background(), "Sleep Science", "transcript text")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryHealth, summary.Category)
	assert.Equal(t, "Schlaf ist wichtig.", summary.CoreMessage)
	assert.Equal(t, 1, gen.calls)
}

func TestSummarize_RetriesInvalidCategory(t *testing.T) {
	gen := &fakeGenerator{
		responses: []string{
			validSummaryJSON("Cooking", "wird verworfen"),
			validSummaryJSON("Health", "Schlaf ist wichtig."),
		},
	}
	svc := NewService(gen, testOptions())

	summary, err := svc.Summarize(context.Background(), "Sleep Science", "transcript text")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryHealth, summary.Category)
	assert.Equal(t, 2, gen.calls)
}

func TestSummarize_SchemaFailureIsPermanent(t *testing.T) {
	gen := &fakeGenerator{responses: []string{validSummaryJSON("Cooking", "nie gültig")}}
	svc := NewService(gen, testOptions())

	_, err := svc.Summarize(context.Background(), "Sleep Science", "transcript text")
	require.Error(t, err)

	var sumErr *SummarizationError
	require.ErrorAs(t, err, &sumErr)
	assert.False(t, sumErr.Retryable)
	assert.Equal(t, 3, gen.calls)
}

func TestSummarize_MalformedJSONIsPermanent(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"this is not json"}}
	svc := NewService(gen, testOptions())

	_, err := svc.Summarize(context.Background(), "title", "transcript")
	var sumErr *SummarizationError
	require.ErrorAs(t, err, &sumErr)
	assert.False(t, sumErr.Retryable)
}

func TestSummarize_TransientFailureIsRetryable(t *testing.T) {
	transient := &generative.GenerationError{Message: "rate limited", Retryable: true}
	gen := &fakeGenerator{
		responses: []string{"", "", ""},
		errs:      []error{transient, transient, transient},
	}
	svc := NewService(gen, testOptions())

	_, err := svc.Summarize(context.Background(), "title", "transcript")
	var sumErr *SummarizationError
	require.ErrorAs(t, err, &sumErr)
	assert.True(t, sumErr.Retryable)
	assert.Equal(t, 3, gen.calls)
}

func TestSummarize_NonRetryableGenerationStopsImmediately(t *testing.T) {
	rejected := &generative.GenerationError{Message: "unauthorized", Retryable: false}
	gen := &fakeGenerator{responses: []string{""}, errs: []error{rejected}}
	svc := NewService(gen, testOptions())

	_, err := svc.Summarize(context.Background(), "title", "transcript")
	var sumErr *SummarizationError
	require.ErrorAs(t, err, &sumErr)
	assert.False(t, sumErr.Retryable)
	assert.Equal(t, 1, gen.calls)
}

func TestSummarize_TransientThenSuccess(t *testing.T) {
	transient := &generative.GenerationError{Message: "server error", Retryable: true}
	gen := &fakeGenerator{
		responses: []string{"", validSummaryJSON("Sport", "Aufschläge üben.")},
		errs:      []error{transient, nil},
	}
	svc := NewService(gen, testOptions())

	summary, err := svc.Summarize(context.Background(), "title", "transcript")
	require.NoError(t, err)
	assert.Equal(t, models.CategorySport, summary.Category)
}

func TestSummarize_SplitsLongTranscript(t *testing.T) {
	sentence := "Eine kurze Aussage über das Thema. "
	transcript := strings.TrimSpace(strings.Repeat(sentence, 40))

	gen := &fakeGenerator{
		responses: []string{
			validSummaryJSON("Health", "Teil eins."),
			validSummaryJSON("Health", "Teil zwei."),
			`{"core_message": "Gesamtaussage über beide Teile."}`,
		},
	}
	opts := testOptions()
	opts.MaxTranscriptChars = 800
	svc := NewService(gen, opts)

	summary, err := svc.Summarize(context.Background(), "Langes Video", transcript)
	require.NoError(t, err)
	assert.Equal(t, "Gesamtaussage über beide Teile.", summary.CoreMessage)
	assert.Equal(t, 3, gen.calls)
	assert.Contains(t, gen.prompts[0], "Teil 1 von 2")
	assert.Contains(t, gen.prompts[1], "Teil 2 von 2")
}

func TestSummarize_SegmentFailureAbortsVideo(t *testing.T) {
	transient := &generative.GenerationError{Message: "down", Retryable: true}
	gen := &fakeGenerator{
		responses: []string{validSummaryJSON("Health", "Teil eins."), "", "", ""},
		errs:      []error{nil, transient, transient, transient},
	}
	opts := testOptions()
	opts.MaxTranscriptChars = 800
	svc := NewService(gen, opts)

	sentence := "Eine kurze Aussage über das Thema. "
	transcript := strings.TrimSpace(strings.Repeat(sentence, 40))

	_, err := svc.Summarize(context.Background(), "Langes Video", transcript)
	var sumErr *SummarizationError
	require.ErrorAs(t, err, &sumErr)
	assert.True(t, sumErr.Retryable)
}

func TestParseSummary(t *testing.T) {
	t.Run("unknown category rejected", func(t *testing.T) {
		_, err := parseSummary(validSummaryJSON("Gardening", "x"))
		var schemaErr *schemaError
		assert.ErrorAs(t, err, &schemaErr)
	})

	t.Run("missing core message rejected", func(t *testing.T) {
		_, err := parseSummary(`{"category": "Health", "detailed_summary": "x"}`)
		var schemaErr *schemaError
		assert.ErrorAs(t, err, &schemaErr)
	})

	t.Run("valid summary accepted", func(t *testing.T) {
		summary, err := parseSummary(validSummaryJSON("Board Games", "Würfelglück."))
		require.NoError(t, err)
		assert.Equal(t, models.CategoryBoardGames, summary.Category)
	})
}

func TestSummarizationError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &SummarizationError{Message: "outer", Cause: cause}
	assert.ErrorIs(t, err, cause)
}
