package model

import "errors"

// Sentinel errors for download operations.
var (
	// ErrInvalidTransition is returned when a task status change would move backwards.
	ErrInvalidTransition = errors.New("invalid task status transition")
	// ErrNotAVideo is returned when a single-item operation receives a playlist.
	ErrNotAVideo = errors.New("url resolves to a playlist, not a single video")
	// ErrNoTargets indicates a batch with nothing to download.
	ErrNoTargets = errors.New("no download targets")
)
