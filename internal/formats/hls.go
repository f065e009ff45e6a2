package formats

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/grafov/m3u8"

	"github.com/jmagar/anydl/internal/model"
)

// Fetcher issues a single GET to a third-party host and returns the response
// with an unread body. *api.Client satisfies it.
type Fetcher interface {
	GetExternal(ctx context.Context, rawURL, label string) (*http.Response, error)
}

// Variant is one rendition advertised by an HLS master playlist.
type Variant struct {
	Bandwidth uint32
	Width     int
	Height    int
	Codecs    string
	URI       string
}

// ProbeHLS fetches an HLS master playlist and returns its variants, highest
// bandwidth first. A media playlist yields no variants.
func ProbeHLS(ctx context.Context, f Fetcher, manifestURL string) ([]Variant, error) {
	resp, err := f.GetExternal(ctx, manifestURL, "hls.manifest")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	playlist, listType, err := m3u8.DecodeFrom(resp.Body, true)
	if err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", manifestURL, err)
	}
	if listType != m3u8.MASTER {
		return nil, nil
	}
	master := playlist.(*m3u8.MasterPlaylist)

	variants := make([]Variant, 0, len(master.Variants))
	for _, v := range master.Variants {
		if v == nil {
			continue
		}
		w, h := parseResolution(v.Resolution)
		variants = append(variants, Variant{
			Bandwidth: v.Bandwidth,
			Width:     w,
			Height:    h,
			Codecs:    v.Codecs,
			URI:       v.URI,
		})
	}
	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].Bandwidth > variants[j].Bandwidth
	})
	return variants, nil
}

func parseResolution(res string) (int, int) {
	ws, hs, ok := strings.Cut(res, "x")
	if !ok {
		return 0, 0
	}
	w, _ := strconv.Atoi(ws)
	h, _ := strconv.Atoi(hs)
	return w, h
}

// closestVariant picks the variant whose bandwidth is nearest tbrKbps, or the
// highest one when the format declares no bitrate.
func closestVariant(variants []Variant, tbrKbps float64) (Variant, bool) {
	if len(variants) == 0 {
		return Variant{}, false
	}
	if tbrKbps <= 0 {
		return variants[0], true
	}
	target := tbrKbps * 1000
	best := variants[0]
	bestDiff := math.Abs(float64(best.Bandwidth) - target)
	for _, v := range variants[1:] {
		if d := math.Abs(float64(v.Bandwidth) - target); d < bestDiff {
			best, bestDiff = v, d
		}
	}
	return best, true
}

// isHLS reports whether the format is delivered through an m3u8 manifest.
func isHLS(f model.FormatDescriptor) bool {
	return f.ManifestURL != "" && strings.Contains(strings.ToLower(f.Protocol), "m3u8")
}

// ResolveHeights fills in Height for HLS video formats that lack one, using
// the master playlist each references. Each manifest is fetched once. Probe
// failures leave the affected formats unchanged; the input is not modified.
func ResolveHeights(ctx context.Context, f Fetcher, formats []model.FormatDescriptor) []model.FormatDescriptor {
	out := make([]model.FormatDescriptor, len(formats))
	copy(out, formats)

	probed := make(map[string][]Variant)
	for i, fd := range out {
		if fd.VerticalResolution() > 0 || fd.AudioOnly() || !isHLS(fd) {
			continue
		}
		variants, seen := probed[fd.ManifestURL]
		if !seen {
			var err error
			variants, err = ProbeHLS(ctx, f, fd.ManifestURL)
			if err != nil {
				variants = nil
			}
			probed[fd.ManifestURL] = variants
		}
		if v, ok := closestVariant(variants, fd.TBR); ok && v.Height > 0 {
			out[i].Height = v.Height
			if out[i].Resolution == "" {
				out[i].Resolution = fmt.Sprintf("%dx%d", v.Width, v.Height)
			}
		}
	}
	return out
}
