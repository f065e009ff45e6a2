package model

import "time"

// Message priority constants for summaries and notifications
const (
	MessagePriorityStatus  = 1 // every item succeeded
	MessagePriorityWarning = 2 // some items failed
	MessagePriorityError   = 3 // every item failed
)

// Request and transfer defaults
const (
	DefaultServerURL      = "http://localhost:8000"
	DefaultAPIPrefix      = "/api"
	DefaultMaxAttempts    = 3
	DefaultAttemptTimeout = 30 * time.Second
	DefaultHealthTimeout  = 5 * time.Second
	DefaultInterItemDelay = 500 * time.Millisecond
	DefaultOutPath        = "anydl downloads"
	DefaultFilename       = "video.mp4"
	DefaultFormatID       = "best"

	// Backend guards. Zero in the config selects these; a negative value
	// turns the guard off. The threshold stays above DefaultMaxAttempts.
	DefaultRateLimitPerSecond = 10.0
	DefaultRateLimitBurst     = 10
	DefaultCircuitThreshold   = 5
	DefaultCircuitReset       = 30 * time.Second

	// MaxManualRetries bounds how often a user may re-run a failed action.
	MaxManualRetries = 3

	// UniversalExt is the container every platform is assumed to play.
	UniversalExt = "mp4"
)

// MediaKind selects which ordering rules apply to a format list.
type MediaKind int

const (
	MediaKindVideo MediaKind = iota
	MediaKindAudio
)

// String returns the string representation of the MediaKind
func (k MediaKind) String() string {
	if k == MediaKindAudio {
		return "audio"
	}
	return "video"
}
