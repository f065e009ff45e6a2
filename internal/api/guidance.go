package api

import (
	"errors"
	"regexp"
	"strings"
)

// UserError is the presentation form of a failure: a short message, an
// optional suggested fix, and whether offering a retry makes sense.
type UserError struct {
	Message   string
	Solution  string
	Retryable bool
}

const genericSolution = "Please try again. If the problem persists, check that the backend is running and the URL is correct."

type guidance struct {
	message  string
	solution string
}

var kindGuidance = map[Kind]guidance{
	KindNetwork: {
		"Network connection error",
		"Check your internet connection and try again. If the problem persists, the server might be temporarily unavailable.",
	},
	KindConnection: {
		"Network connection error",
		"Check your internet connection and try again. If the problem persists, the server might be temporarily unavailable.",
	},
	KindNotFound: {
		"Video not found",
		"The video may have been removed, made private, or the URL is incorrect. Please verify the URL and try again.",
	},
	KindForbidden: {
		"Access denied",
		"This video may be age-restricted, geo-blocked, or requires authentication. Try a different video.",
	},
	KindTimeout: {
		"Request timed out",
		"The server took too long to respond. This might be due to a slow connection or a large file. Please try again.",
	},
	KindRateLimited: {
		"Too many requests",
		"You've made too many requests. Please wait a few minutes before trying again.",
	},
	KindCircuitOpen: {
		"Backend temporarily unavailable",
		"Several requests failed in a row. Wait a minute before trying again.",
	},
}

// messagePatterns classify errors that carry no Kind, checked in order.
var messagePatterns = []struct {
	re *regexp.Regexp
	guidance
}{
	{regexp.MustCompile(`(?i)network|fetch|connection|offline`), kindGuidance[KindNetwork]},
	{regexp.MustCompile(`(?i)404|not found`), kindGuidance[KindNotFound]},
	{regexp.MustCompile(`(?i)403|forbidden|unauthorized`), kindGuidance[KindForbidden]},
	{regexp.MustCompile(`(?i)timeout`), kindGuidance[KindTimeout]},
	{regexp.MustCompile(`(?i)invalid|unsupported`), guidance{
		"Invalid or unsupported URL",
		"Please ensure you're using a valid video URL from a supported platform (YouTube, Facebook, Instagram, etc.).",
	}},
	{regexp.MustCompile(`(?i)rate limit|too many requests`), kindGuidance[KindRateLimited]},
	{regexp.MustCompile(`(?i)copyright|dmca`), guidance{
		"Copyright restriction",
		"This video is protected by copyright and cannot be downloaded. Please respect content creators' rights.",
	}},
	{regexp.MustCompile(`(?i)no.*format`), guidance{
		"No suitable format available",
		"No downloadable formats were found for this video. It may be a live stream or have restricted access.",
	}},
}

// Explain maps err to a UserError. Classified errors use their kind; server,
// parse and unclassified errors fall back to matching the message text, so a
// backend detail like "Unsupported URL" still gets targeted advice.
func Explain(err error) UserError {
	if err == nil {
		return UserError{}
	}
	msg := err.Error()
	kind := KindOf(err)
	retryable := kind != KindNotFound && kind != KindForbidden

	var re *RequestError
	if errors.As(err, &re) && re.Message != "" {
		msg = re.Message
	}

	if g, ok := kindGuidance[kind]; ok {
		return UserError{Message: g.message, Solution: g.solution, Retryable: retryable}
	}
	for _, p := range messagePatterns {
		if p.re.MatchString(msg) {
			return UserError{Message: p.message, Solution: p.solution, Retryable: retryable}
		}
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = "An unexpected error occurred"
	}
	return UserError{Message: msg, Solution: genericSolution, Retryable: retryable}
}
