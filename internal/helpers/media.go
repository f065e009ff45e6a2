package helpers

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const maxMediaURLLen = 500

// errorIndicators mark pasted text that is an error message rather than a link.
var errorIndicators = []string{"error", "failed", "typeerror", "cannot read", "404", "serviceworker"}

// IsValidMediaURL reports whether text looks like a usable media link:
// an absolute http(s) URL of reasonable length that is not an error message.
func IsValidMediaURL(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxMediaURLLen {
		return false
	}
	if !strings.Contains(text, "http://") && !strings.Contains(text, "https://") {
		return false
	}
	lower := strings.ToLower(text)
	for _, indicator := range errorIndicators {
		if strings.Contains(lower, indicator) {
			return false
		}
	}
	u, err := url.Parse(text)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FormatDuration renders seconds as "H:MM:SS" or "M:SS"; zero is "N/A".
func FormatDuration(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) {
		return "N/A"
	}
	total := int(math.Floor(seconds))
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// ErrInvalidItems is returned for a malformed playlist item selection.
var ErrInvalidItems = errors.New("invalid item selection")

// ParseItems parses a 1-based selection such as "1,3,5-7" against a list of
// count entries and returns 0-based indexes in ascending order without
// duplicates. An empty spec selects everything.
func ParseItems(spec string, count int) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		all := make([]int, count)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	selected := make([]bool, count)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi := part, part
		if a, b, ok := strings.Cut(part, "-"); ok {
			lo, hi = strings.TrimSpace(a), strings.TrimSpace(b)
		}
		from, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidItems, part)
		}
		to, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidItems, part)
		}
		if from < 1 || to > count || from > to {
			return nil, fmt.Errorf("%w: %q out of range 1-%d", ErrInvalidItems, part, count)
		}
		for i := from; i <= to; i++ {
			selected[i-1] = true
		}
	}
	var out []int
	for i, ok := range selected {
		if ok {
			out = append(out, i)
		}
	}
	return out, nil
}
