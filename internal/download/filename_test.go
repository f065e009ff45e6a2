package download

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmagar/anydl/internal/model"
)

func TestFilenameFromDisposition(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{`attachment; filename="My Clip.mp4"`, "My Clip.mp4", true},
		{`attachment; filename=clip.webm`, "clip.webm", true},
		{`attachment; filename*=UTF-8''na%C3%AFve.mp4`, "naïve.mp4", true},
		{`attachment; filename="fallback.mp4"; filename*=UTF-8''pref.mp4`, "pref.mp4", true},
		{`attachment; filename="../../etc/passwd"`, "passwd", true},
		{`attachment; filename=Live: Part 1.mp4`, "Live_ Part 1.mp4", true},
		{`attachment`, "", false},
		{``, "", false},
		{`attachment; filename=""`, "", false},
	}
	for _, tc := range tests {
		got, ok := FilenameFromDisposition(tc.header)
		if got != tc.want || ok != tc.ok {
			t.Errorf("FilenameFromDisposition(%q) = %q, %v; want %q, %v", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFilenameFromHeader_Default(t *testing.T) {
	if got := FilenameFromHeader(http.Header{}); got != model.DefaultFilename {
		t.Fatalf("FilenameFromHeader = %q", got)
	}
}

func TestInferExtension(t *testing.T) {
	tests := []struct {
		name  string
		f     model.FormatDescriptor
		found bool
		want  string
	}{
		{"missing format", model.FormatDescriptor{}, false, "mp4"},
		{"audio only", model.FormatDescriptor{Ext: "webm", VCodec: "none"}, true, "m4a"},
		{"webm video", model.FormatDescriptor{Ext: "webm", VCodec: "vp9"}, true, "mp4"},
		{"no ext", model.FormatDescriptor{VCodec: "avc1"}, true, "mp4"},
		{"mkv", model.FormatDescriptor{Ext: "mkv"}, true, "mkv"},
	}
	for _, tc := range tests {
		if got := InferExtension(tc.f, tc.found); got != tc.want {
			t.Errorf("%s: InferExtension = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestDirSaver_NeverOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := DirSaver{Dir: dir}
	first, err := s.Save("clip.mp4", []byte("one"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := s.Save("clip.mp4", []byte("two"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first == second || filepath.Base(second) != "clip (1).mp4" {
		t.Fatalf("paths = %q, %q", first, second)
	}
	data, _ := os.ReadFile(first)
	if string(data) != "one" {
		t.Fatalf("first file = %q", data)
	}
	if _, err := os.Stat(second + ".part"); !os.IsNotExist(err) {
		t.Fatal("temporary file left behind")
	}
}
