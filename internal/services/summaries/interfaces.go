package summaries

import (
	"context"

	"github.com/killallgit/digest-api/internal/models"
)

// Service turns a transcript into a structured summary
type Service interface {
	Summarize(ctx context.Context, title, transcript string) (*models.Summary, error)
}
