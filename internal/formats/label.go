package formats

import (
	"fmt"
	"strings"

	"github.com/jmagar/anydl/internal/model"
)

// Label is the headline shown for a format: resolution and note for video,
// "Audio Only" for audio.
func Label(f model.FormatDescriptor, kind model.MediaKind) string {
	if kind == model.MediaKindAudio {
		return "Audio Only"
	}
	res := f.Resolution
	if res == "" {
		res = "Unknown"
	}
	if f.FormatNote != "" {
		return fmt.Sprintf("%s (%s)", res, f.FormatNote)
	}
	return res
}

// Details renders the container and, when known, the size in MiB with one
// decimal, e.g. "Format: MP4 • 12.0 MB".
func Details(f model.FormatDescriptor) string {
	s := "Format: " + strings.ToUpper(f.Ext)
	if f.Filesize > 0 {
		s += fmt.Sprintf(" • %.1f MB", float64(f.Filesize)/(1024*1024))
	}
	return s
}

// DownloadLabel is the action text: plain "Download" for the recommended
// format, "Download <EXT>" otherwise.
func DownloadLabel(f model.FormatDescriptor, recommended bool) string {
	if recommended {
		return "Download"
	}
	return "Download " + strings.ToUpper(f.Ext)
}
