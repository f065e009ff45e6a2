package formats

import (
	"slices"
	"strings"

	"github.com/jmagar/anydl/internal/model"
)

// scoreGap is the score difference above which platform preference overrides
// quality ordering.
const scoreGap = 50

// Score rates f for p. A preferred container scores 100 minus its position in
// the preference list; anything else scores its height, plus 50 for mp4.
func Score(f model.FormatDescriptor, p Platform) int {
	ext := strings.ToLower(f.Ext)
	for i, pref := range p.Preferred() {
		if strings.Contains(ext, pref) {
			return 100 - i
		}
	}
	score := f.Height
	if ext == model.UniversalExt {
		score += scoreGap
	}
	return score
}

type scored struct {
	f     model.FormatDescriptor
	score int
}

func compare(kind model.MediaKind) func(a, b scored) int {
	return func(a, b scored) int {
		if d := a.score - b.score; d > scoreGap || d < -scoreGap {
			return b.score - a.score
		}
		if kind == model.MediaKindVideo {
			if ra, rb := a.f.VerticalResolution(), b.f.VerticalResolution(); ra != rb {
				return rb - ra
			}
		}
		switch {
		case a.f.Filesize > b.f.Filesize:
			return -1
		case a.f.Filesize < b.f.Filesize:
			return 1
		default:
			return 0
		}
	}
}

// Rank returns formats ordered best-first for p without modifying the input.
// The comparator is not transitive across the score gap, so after sorting,
// every format within scoreGap of the best score is moved ahead of the rest
// (keeping relative order). The head is therefore always a contender.
func Rank(formats []model.FormatDescriptor, p Platform, kind model.MediaKind) []model.FormatDescriptor {
	if len(formats) == 0 {
		return nil
	}
	items := make([]scored, len(formats))
	maxScore := 0
	for i, f := range formats {
		items[i] = scored{f: f, score: Score(f, p)}
		if i == 0 || items[i].score > maxScore {
			maxScore = items[i].score
		}
	}
	slices.SortStableFunc(items, compare(kind))

	out := make([]model.FormatDescriptor, 0, len(items))
	for _, it := range items {
		if maxScore-it.score <= scoreGap {
			out = append(out, it.f)
		}
	}
	for _, it := range items {
		if maxScore-it.score > scoreGap {
			out = append(out, it.f)
		}
	}
	return out
}

// Recommended returns the best format for p, or false when formats is empty.
func Recommended(formats []model.FormatDescriptor, p Platform, kind model.MediaKind) (model.FormatDescriptor, bool) {
	ranked := Rank(formats, p, kind)
	if len(ranked) == 0 {
		return model.FormatDescriptor{}, false
	}
	return ranked[0], true
}

// RecommendedLabel is the tag shown next to the head of a ranked list.
func RecommendedLabel(p Platform) string {
	return "Best for " + p.DisplayName()
}
