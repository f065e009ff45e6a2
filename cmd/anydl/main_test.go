package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jmagar/anydl/internal/testutil"
)

const clipInfo = `{
  "title": "Test Clip",
  "duration": 125,
  "formats": [
    {"format_id": "18", "ext": "mp4", "height": 360, "resolution": "640x360"},
    {"format_id": "22", "ext": "mp4", "height": 720, "resolution": "1280x720", "format_note": "hd"},
    {"format_id": "43", "ext": "webm", "height": 720, "resolution": "1280x720"}
  ],
  "audio_formats": [
    {"format_id": "140", "ext": "m4a", "vcodec": "none", "acodec": "mp4a", "filesize": 1048576}
  ]
}`

const playlistInfo = `{
  "type": "playlist",
  "title": "Road Trip",
  "videos": [
    {"id": "a", "url": "https://media.test/a", "title": "First", "duration": 61},
    {"id": "b", "url": "https://media.test/b", "title": "Second"},
    {"id": "c", "url": "https://media.test/c", "title": "Third"}
  ]
}`

// backend is a fake extraction server recording download requests.
type backend struct {
	mu        sync.Mutex
	downloads []string
	// fail maps a media URL to the status its download returns.
	fail map[string]int
	// failOnce makes the first download of any URL return 500.
	failOnce bool
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	switch r.URL.Path {
	case "/":
		w.WriteHeader(http.StatusOK)
	case "/api/info":
		if strings.Contains(target, "playlist") {
			_, _ = w.Write([]byte(playlistInfo))
			return
		}
		_, _ = w.Write([]byte(clipInfo))
	case "/api/download":
		b.mu.Lock()
		b.downloads = append(b.downloads, target+"#"+r.URL.Query().Get("format_id"))
		status := b.fail[target]
		if b.failOnce {
			b.failOnce = false
			status = http.StatusInternalServerError
		}
		b.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"detail":"backend refused"}`))
			return
		}
		name := filepath.Base(target) + ".mp4"
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		_, _ = w.Write([]byte("bytes of " + target))
	default:
		http.NotFound(w, r)
	}
}

func (b *backend) requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.downloads...)
}

type env struct {
	server *httptest.Server
	be     *backend
	out    string
	config string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	testutil.WithTempHome(t)
	dir := testutil.ChdirTemp(t)
	be := &backend{fail: map[string]int{}}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	cfgPath := filepath.Join(dir, "anydl.yaml")
	cfg := "serverUrl: " + srv.URL + "\ninterItemDelayMs: 1\nplatform: linux\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return &env{server: srv, be: be, out: filepath.Join(dir, "out"), config: cfgPath}
}

func (e *env) run(t *testing.T, stdin string, interactive bool, args ...string) (int, string) {
	t.Helper()
	argv := append([]string{"-c", e.config, "-o", e.out}, args...)
	var code int
	out := testutil.CaptureStdout(t, func() {
		code = run(context.Background(), argv, strings.NewReader(stdin), interactive)
	})
	return code, out
}

func TestRun_Ping(t *testing.T) {
	e := newEnv(t)
	code, out := e.run(t, "", false, "ping")
	if code != 0 || !strings.Contains(out, "is up") {
		t.Fatalf("code = %d, out = %s", code, out)
	}

	e.server.Close()
	code, out = e.run(t, "", false, "ping")
	if code != 1 || !strings.Contains(out, "unreachable") {
		t.Fatalf("code = %d, out = %s", code, out)
	}
}

func TestRun_InfoRanksFormats(t *testing.T) {
	e := newEnv(t)
	code, out := e.run(t, "", false, "info", "https://media.test/clip")
	if code != 0 {
		t.Fatalf("code = %d, out = %s", code, out)
	}
	for _, want := range []string{"Test Clip", "2:05", "Video formats", "Best for Linux", "1280x720 (hd)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, " 22 ") > strings.Index(out, " 18 ") {
		t.Errorf("format 22 should be listed before 18:\n%s", out)
	}

	_, out = e.run(t, "", false, "info", "--audio", "https://media.test/clip")
	if !strings.Contains(out, "Audio Only") || !strings.Contains(out, "1.0 MB") {
		t.Errorf("audio listing:\n%s", out)
	}
}

func TestRun_InfoPlaylist(t *testing.T) {
	e := newEnv(t)
	code, out := e.run(t, "", false, "info", "https://media.test/playlist")
	if code != 0 || !strings.Contains(out, "Road Trip") || !strings.Contains(out, " 1. First (1:01)") {
		t.Fatalf("code = %d, out = %s", code, out)
	}
}

func TestRun_InvalidURL(t *testing.T) {
	e := newEnv(t)
	code, out := e.run(t, "", false, "get", "not a url")
	if code != 1 || !strings.Contains(out, "valid http(s) URL") {
		t.Fatalf("code = %d, out = %s", code, out)
	}
}

func TestRun_GetPicksRecommendedFormat(t *testing.T) {
	e := newEnv(t)
	code, out := e.run(t, "", false, "get", "https://media.test/clip")
	if code != 0 {
		t.Fatalf("code = %d, out = %s", code, out)
	}
	if got := e.be.requests(); len(got) != 1 || got[0] != "https://media.test/clip#22" {
		t.Fatalf("downloads = %v", got)
	}
	data, err := os.ReadFile(filepath.Join(e.out, "Test_Clip.mp4"))
	if err != nil || string(data) != "bytes of https://media.test/clip" {
		t.Fatalf("saved = %q, %v", data, err)
	}
}

func TestRun_GetDirectUsesHeaderName(t *testing.T) {
	e := newEnv(t)
	code, out := e.run(t, "", false, "get", "--direct", "-f", "18", "https://media.test/clip")
	if code != 0 {
		t.Fatalf("code = %d, out = %s", code, out)
	}
	if _, err := os.Stat(filepath.Join(e.out, "clip.mp4")); err != nil {
		t.Fatalf("expected clip.mp4: %v", err)
	}
}

func TestRun_GetRetryPrompt(t *testing.T) {
	e := newEnv(t)
	e.be.failOnce = true
	code, out := e.run(t, "y\n", true, "--attempts", "1", "get", "-f", "22", "https://media.test/clip")
	if code != 0 {
		t.Fatalf("code = %d, out = %s", code, out)
	}
	if !strings.Contains(out, "Retry download? (1/3)") {
		t.Fatalf("no retry prompt:\n%s", out)
	}
	if got := e.be.requests(); len(got) != 2 {
		t.Fatalf("downloads = %v", got)
	}
}

func TestRun_GetNotFoundIsNotOfferedRetry(t *testing.T) {
	e := newEnv(t)
	e.be.fail["https://media.test/gone"] = http.StatusNotFound
	code, out := e.run(t, "y\n", true, "get", "-f", "22", "https://media.test/gone")
	if code != 1 || strings.Contains(out, "Retry") {
		t.Fatalf("code = %d, out = %s", code, out)
	}
	if len(e.be.requests()) != 1 {
		t.Fatalf("downloads = %v", e.be.requests())
	}
}

func TestRun_BatchContinuesPastFailures(t *testing.T) {
	e := newEnv(t)
	e.be.fail["https://media.test/two"] = http.StatusForbidden
	list := filepath.Join(filepath.Dir(e.config), "urls.txt")
	if err := os.WriteFile(list, []byte("https://media.test/one\n# comment\nhttps://media.test/two\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	code, out := e.run(t, "", false, "batch", "-f", "18", list, "https://media.test/three", "https://media.test/one")
	if code != 1 {
		t.Fatalf("code = %d, out = %s", code, out)
	}
	want := []string{"https://media.test/one#18", "https://media.test/two#18", "https://media.test/three#18"}
	if got := e.be.requests(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("downloads = %v", got)
	}
	if !strings.Contains(out, "Batch download completed: 2 successful, 1 failed") {
		t.Fatalf("summary missing:\n%s", out)
	}
	for _, name := range []string{"one.mp4", "three.mp4"} {
		if _, err := os.Stat(filepath.Join(e.out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestRun_BatchPlaylistItems(t *testing.T) {
	e := newEnv(t)
	code, out := e.run(t, "", false, "batch", "--playlist", "https://media.test/playlist", "--items", "1,3")
	if code != 0 {
		t.Fatalf("code = %d, out = %s", code, out)
	}
	want := "https://media.test/a#best,https://media.test/c#best"
	if got := strings.Join(e.be.requests(), ","); got != want {
		t.Fatalf("downloads = %s", got)
	}

	code, _ = e.run(t, "", false, "batch", "--playlist", "https://media.test/playlist", "--items", "9")
	if code != 1 {
		t.Fatalf("out-of-range selection should fail, code = %d", code)
	}
}

func TestRun_Usage(t *testing.T) {
	e := newEnv(t)
	if code, _ := e.run(t, "", false); code != 2 {
		t.Fatalf("no subcommand: code = %d", code)
	}
	if code, _ := e.run(t, "", false, "--bogus", "ping"); code != 2 {
		t.Fatalf("unknown flag: code = %d", code)
	}
	if code, _ := e.run(t, "", false, "--server", "ftp://nope", "ping"); code != 1 {
		t.Fatalf("invalid server: code = %d", code)
	}
}
