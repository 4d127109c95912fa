package service

import "errors"

// Sentinel kinds for batch processing errors.
var (
	// ErrNotStarted means ProcessBatch was called before Start.
	ErrNotStarted = errors.New("service not started")

	// ErrAIUnavailable means a batch kind that requires rewriting was
	// requested while no generation provider is configured.
	ErrAIUnavailable = errors.New("no AI rewrite provider configured")
)
