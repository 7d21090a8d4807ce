package summaries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/digest-api/internal/models"
	"github.com/killallgit/digest-api/internal/services/generative"
)

func newTestService(gen generative.Generator) *service {
	return NewService(gen, testOptions()).(*service)
}

func TestSynthesize_SinglePartPassesThrough(t *testing.T) {
	gen := &fakeGenerator{responses: []string{""}}
	svc := newTestService(gen)

	part := &models.Summary{
		Category:        models.CategoryHealth,
		CoreMessage:     "unverändert",
		DetailedSummary: "Details",
	}
	merged, err := svc.synthesize(context.Background(), "title", []*models.Summary{part})
	require.NoError(t, err)
	assert.Same(t, part, merged)
	assert.Equal(t, 0, gen.calls, "no synthesis pass for a single segment")
}

func TestSynthesize_MergesParts(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`{"core_message": "Gesamtbild."}`}}
	svc := newTestService(gen)

	parts := []*models.Summary{
		{
			Category:        models.CategoryHealth,
			CoreMessage:     "Teil eins.",
			DetailedSummary: "Erster Abschnitt.",
			KeyTakeaways:    []string{"Schlaf zählt", "Wasser trinken"},
			ActionItems:     []string{"Früh schlafen gehen"},
			Timestamps: []models.TimestampNote{
				{OffsetSeconds: 300, Description: "Mitte"},
			},
		},
		{
			Category:        models.CategoryHealth,
			CoreMessage:     "Teil zwei.",
			DetailedSummary: "Zweiter Abschnitt.",
			KeyTakeaways:    []string{"Wasser trinken", "Bewegung hilft"},
			ActionItems:     []string{"Früh schlafen gehen", "Spazieren gehen"},
			Timestamps: []models.TimestampNote{
				{OffsetSeconds: 30, Description: "Anfang"},
			},
		},
	}

	merged, err := svc.synthesize(context.Background(), "title", parts)
	require.NoError(t, err)

	assert.Equal(t, models.CategoryHealth, merged.Category)
	assert.Equal(t, "Gesamtbild.", merged.CoreMessage)
	assert.Equal(t, "Erster Abschnitt.\n\nZweiter Abschnitt.", merged.DetailedSummary)
	assert.Equal(t, []string{"Schlaf zählt", "Wasser trinken", "Bewegung hilft"}, merged.KeyTakeaways)
	assert.Equal(t, []string{"Früh schlafen gehen", "Spazieren gehen"}, merged.ActionItems)
	require.Len(t, merged.Timestamps, 2)
	assert.Equal(t, 30, merged.Timestamps[0].OffsetSeconds)
	assert.Equal(t, 300, merged.Timestamps[1].OffsetSeconds)
}

func TestSynthesize_CoreMessageFallback(t *testing.T) {
	gen := &fakeGenerator{
		responses: []string{""},
		errs:      []error{&generative.GenerationError{Message: "down", Retryable: true}},
	}
	svc := newTestService(gen)

	parts := []*models.Summary{
		{Category: models.CategorySport, CoreMessage: "Erste Kernaussage."},
		{Category: models.CategorySport, CoreMessage: "Zweite Kernaussage."},
	}
	merged, err := svc.synthesize(context.Background(), "title", parts)
	require.NoError(t, err)
	assert.Equal(t, "Erste Kernaussage.", merged.CoreMessage)
}

func TestElectCategory(t *testing.T) {
	tests := []struct {
		name  string
		votes []models.Category
		want  models.Category
	}{
		{
			name:  "majority wins",
			votes: []models.Category{models.CategoryHealth, models.CategoryHealth, models.CategorySport},
			want:  models.CategoryHealth,
		},
		{
			name:  "tie goes to higher priority",
			votes: []models.Category{models.CategorySport, models.CategoryBoardGames},
			want:  models.CategoryBoardGames,
		},
		{
			name:  "other loses every tie",
			votes: []models.Category{models.CategoryOther, models.CategoryBeachVolleyball},
			want:  models.CategoryBeachVolleyball,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := make([]*models.Summary, 0, len(tt.votes))
			for _, v := range tt.votes {
				parts = append(parts, &models.Summary{Category: v})
			}
			assert.Equal(t, tt.want, electCategory(parts))
		})
	}
}

func TestAppendUnique(t *testing.T) {
	got := appendUnique([]string{"Alpha"}, []string{"alpha", "Beta", " beta ", "", "Gamma"})
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, got)
}
