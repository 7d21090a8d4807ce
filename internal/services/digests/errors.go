package digests

import "errors"

var (
	// ErrNoVideos means no summarized videos are eligible for a digest
	ErrNoVideos = errors.New("no videos eligible for digest")

	// ErrDigestNotFound indicates a digest lookup that matched nothing
	ErrDigestNotFound = errors.New("digest not found")

	// ErrConcurrencyConflict means another generation claimed the videos
	// first. The caller may retry once; the second conflict is final.
	ErrConcurrencyConflict = errors.New("digest generation conflicted with a concurrent run")
)
