package download

import (
	"mime"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/jmagar/anydl/internal/helpers"
	"github.com/jmagar/anydl/internal/model"
)

// dispositionRegex is the lenient fallback for headers mime cannot parse,
// e.g. unquoted names containing spaces or semicolons.
var dispositionRegex = regexp.MustCompile(`(?i)filename[^;=\n]*=((['"]).*?['"]|[^;\n]*)`)

// FilenameFromDisposition extracts the file name from a Content-Disposition
// header value. filename* (RFC 5987) wins over filename. The result is reduced
// to its base name and sanitised; ok is false when no usable name is present.
func FilenameFromDisposition(value string) (string, bool) {
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	var name string
	if _, params, err := mime.ParseMediaType(value); err == nil {
		// mime decodes filename* into the plain "filename" key.
		name = params["filename"]
	}
	if name == "" {
		if m := dispositionRegex.FindStringSubmatch(value); m != nil {
			name = strings.NewReplacer(`"`, "", "'", "").Replace(strings.TrimSpace(m[1]))
			if len(name) > 5 && strings.EqualFold(name[:5], "utf-8") {
				name = name[5:]
				if unescaped, err := url.PathUnescape(name); err == nil {
					name = unescaped
				}
			}
		}
	}
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	name = helpers.Sanitise(name)
	if name == "" || name == "." || name == "_" {
		return "", false
	}
	return name, true
}

// FilenameFromHeader names a download from its response headers, falling
// back to model.DefaultFilename.
func FilenameFromHeader(h http.Header) string {
	if name, ok := FilenameFromDisposition(h.Get("Content-Disposition")); ok {
		return name
	}
	return model.DefaultFilename
}

// InferExtension picks the saved extension for a format: m4a for audio-only,
// mp4 in place of webm, mp4 when the format or its extension is unknown.
func InferExtension(f model.FormatDescriptor, found bool) string {
	if !found {
		return model.UniversalExt
	}
	if f.AudioOnly() {
		return "m4a"
	}
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f.Ext), "."))
	switch ext {
	case "":
		return model.UniversalExt
	case "webm":
		return model.UniversalExt
	default:
		return ext
	}
}

// TitleFilename builds the saved name for a single download from the media
// title and the chosen format.
func TitleFilename(title string, f model.FormatDescriptor, found bool) string {
	return helpers.CleanTitle(title) + "." + InferExtension(f, found)
}
