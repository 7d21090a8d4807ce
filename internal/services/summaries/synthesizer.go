package summaries

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"

	"github.com/killallgit/digest-api/internal/models"
)

// synthesize merges per-segment summaries into one video summary. A
// single segment passes through unchanged. The merge is deterministic
// except for the core message, which is condensed in one extra
// generation pass over the segment core messages.
func (s *service) synthesize(ctx context.Context, title string, parts []*models.Summary) (*models.Summary, error) {
	if len(parts) == 1 {
		return parts[0], nil
	}

	merged := &models.Summary{
		Category: electCategory(parts),
	}

	var paragraphs []string
	var coreMessages []string
	for _, p := range parts {
		paragraphs = append(paragraphs, p.DetailedSummary)
		coreMessages = append(coreMessages, p.CoreMessage)
		merged.KeyTakeaways = appendUnique(merged.KeyTakeaways, p.KeyTakeaways)
		merged.ActionItems = appendUnique(merged.ActionItems, p.ActionItems)
		merged.Timestamps = append(merged.Timestamps, p.Timestamps...)
	}
	merged.DetailedSummary = strings.Join(paragraphs, "\n\n")

	sort.SliceStable(merged.Timestamps, func(i, j int) bool {
		return merged.Timestamps[i].OffsetSeconds < merged.Timestamps[j].OffsetSeconds
	})

	merged.CoreMessage = s.condenseCoreMessage(ctx, title, coreMessages)

	return merged, nil
}

// electCategory picks the category by majority vote over the segments.
// Ties go to the higher-priority category.
func electCategory(parts []*models.Summary) models.Category {
	votes := make(map[models.Category]int)
	for _, p := range parts {
		votes[p.Category]++
	}

	var winner models.Category
	winnerVotes := -1
	for category, n := range votes {
		if n > winnerVotes || (n == winnerVotes && category.Priority() < winner.Priority()) {
			winner = category
			winnerVotes = n
		}
	}
	return winner
}

// condenseCoreMessage runs the synthesis generation pass. When the pass
// fails, the first segment's core message stands in so a long video
// never loses its summary over this step.
func (s *service) condenseCoreMessage(ctx context.Context, title string, coreMessages []string) string {
	raw, err := s.generator.GenerateJSON(ctx, coreMessageSystemPrompt(), coreMessageUserPrompt(title, coreMessages))
	if err != nil {
		log.Printf("[DEBUG] Core message synthesis failed: %v, keeping first segment message", err)
		return coreMessages[0]
	}

	var result struct {
		CoreMessage string `json:"core_message"`
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil || strings.TrimSpace(result.CoreMessage) == "" {
		log.Printf("[DEBUG] Core message synthesis returned unusable output, keeping first segment message")
		return coreMessages[0]
	}
	return result.CoreMessage
}

// appendUnique concatenates items preserving order, dropping entries
// already present (ignoring case and surrounding whitespace).
func appendUnique(existing, items []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, item := range existing {
		seen[normalizeItem(item)] = true
	}
	for _, item := range items {
		key := normalizeItem(item)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		existing = append(existing, item)
	}
	return existing
}

func normalizeItem(item string) string {
	return strings.ToLower(strings.TrimSpace(item))
}
