package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NoCodec is the codec value the backend uses for a missing audio or video track.
const NoCodec = "none"

// Bytes is a byte count decoded leniently from the backend, which may send
// integers, floats (approximate sizes) or null.
type Bytes int64

// UnmarshalJSON accepts numbers in any JSON form and treats null as zero.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
		if len(data) == 0 {
			*b = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid byte count %q: %w", data, err)
	}
	if f < 0 || math.IsNaN(f) {
		f = 0
	}
	*b = Bytes(math.Round(f))
	return nil
}

// FormatDescriptor is one downloadable encoding of a media item.
type FormatDescriptor struct {
	FormatID    string  `json:"format_id"`
	Ext         string  `json:"ext"`
	Height      int     `json:"height,omitempty"`
	Resolution  string  `json:"resolution,omitempty"`
	VCodec      string  `json:"vcodec,omitempty"`
	ACodec      string  `json:"acodec,omitempty"`
	Filesize    Bytes   `json:"filesize,omitempty"`
	FormatNote  string  `json:"format_note,omitempty"`
	Protocol    string  `json:"protocol,omitempty"`
	ManifestURL string  `json:"manifest_url,omitempty"`
	TBR         float64 `json:"tbr,omitempty"`
}

// AudioOnly reports whether the format carries no video track.
func (f FormatDescriptor) AudioOnly() bool {
	return strings.EqualFold(f.VCodec, NoCodec)
}

// VerticalResolution returns the declared height, falling back to the
// resolution string ("1920x1080" or "720p"). Returns 0 when neither is usable.
func (f FormatDescriptor) VerticalResolution() int {
	if f.Height > 0 {
		return f.Height
	}
	res := strings.ToLower(strings.TrimSpace(f.Resolution))
	if res == "" {
		return 0
	}
	if _, h, ok := strings.Cut(res, "x"); ok {
		res = h
	}
	res = strings.TrimSuffix(res, "p")
	n, err := strconv.Atoi(res)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// VideoMetadata describes a single media item and its available formats.
type VideoMetadata struct {
	ID               string             `json:"id,omitempty"`
	WebpageURL       string             `json:"webpage_url,omitempty"`
	Title            string             `json:"title"`
	Thumbnail        string             `json:"thumbnail,omitempty"`
	Duration         float64            `json:"duration,omitempty"`
	Formats          []FormatDescriptor `json:"formats"`
	AudioFormats     []FormatDescriptor `json:"audio_formats,omitempty"`
	RequestedFormats []FormatDescriptor `json:"requested_formats,omitempty"`
}

// FindFormat looks up a format id across the video, audio and requested lists.
func (v *VideoMetadata) FindFormat(formatID string) (FormatDescriptor, bool) {
	if v == nil {
		return FormatDescriptor{}, false
	}
	for _, list := range [][]FormatDescriptor{v.Formats, v.RequestedFormats, v.AudioFormats} {
		for _, f := range list {
			if f.FormatID == formatID {
				return f, true
			}
		}
	}
	return FormatDescriptor{}, false
}

// PlaylistEntry is the lightweight per-item record inside a playlist response.
type PlaylistEntry struct {
	ID        string  `json:"id"`
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
}

// PlaylistMetadata describes a playlist; formats are resolved per item on demand.
type PlaylistMetadata struct {
	Title         string          `json:"title"`
	PlaylistCount int             `json:"playlist_count,omitempty"`
	Uploader      string          `json:"uploader,omitempty"`
	Videos        []PlaylistEntry `json:"videos"`
}

// Count returns the declared playlist size, or the entry count when undeclared.
func (p *PlaylistMetadata) Count() int {
	if p == nil {
		return 0
	}
	if p.PlaylistCount > 0 {
		return p.PlaylistCount
	}
	return len(p.Videos)
}

// InfoTypePlaylist is the discriminator value for playlist responses.
const InfoTypePlaylist = "playlist"

// InfoResponse is the decoded /info body. Exactly one of Video and Playlist is set.
type InfoResponse struct {
	Type     string
	Video    *VideoMetadata
	Playlist *PlaylistMetadata
}

// IsPlaylist reports whether the response describes a playlist.
func (r *InfoResponse) IsPlaylist() bool {
	return r != nil && r.Playlist != nil
}

// UnmarshalJSON decodes either shape, discriminated by the "type" field.
func (r *InfoResponse) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	r.Type = head.Type
	r.Video, r.Playlist = nil, nil
	if head.Type == InfoTypePlaylist {
		var p PlaylistMetadata
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		r.Playlist = &p
		return nil
	}
	var v VideoMetadata
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.Video = &v
	return nil
}
