package summaries

import "fmt"

// SummarizationError describes a failed summarization. Retryable errors
// come from transient upstream conditions and may succeed on a later
// attempt; non-retryable ones are permanent for this transcript.
type SummarizationError struct {
	Message   string
	Retryable bool
	Cause     error
}

func (e *SummarizationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("summarization failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("summarization failed: %s", e.Message)
}

func (e *SummarizationError) Unwrap() error {
	return e.Cause
}
