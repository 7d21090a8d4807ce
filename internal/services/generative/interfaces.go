package generative

import "context"

// Generator produces structured JSON output from a prompt pair. The
// returned string is the raw model output, expected to be a single JSON
// document matching the schema described in the system prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
