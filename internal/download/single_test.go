package download

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmagar/anydl/internal/api"
	"github.com/jmagar/anydl/internal/model"
)

const singleInfo = `{
  "title": "Live at the Fillmore: Night 2",
  "formats": [
    {"format_id": "22", "ext": "mp4", "height": 720},
    {"format_id": "43", "ext": "webm", "height": 360}
  ],
  "audio_formats": [
    {"format_id": "140", "ext": "m4a", "vcodec": "none"}
  ]
}`

func TestSingle_NamesFromTitleAndFormat(t *testing.T) {
	tests := []struct {
		formatID string
		want     string
	}{
		{"22", "Live_at_the_Fillmore__Night_2.mp4"},
		{"43", "Live_at_the_Fillmore__Night_2.mp4"},
		{"140", "Live_at_the_Fillmore__Night_2.m4a"},
		{"999", "Live_at_the_Fillmore__Night_2.mp4"},
	}
	for _, tc := range tests {
		t.Run(tc.formatID, func(t *testing.T) {
			client, _ := newBackend(t, func(req *http.Request) (*http.Response, error) {
				switch req.URL.Path {
				case "/api/info":
					return httpResponse(http.StatusOK, singleInfo), nil
				case "/api/download":
					resp := httpResponse(http.StatusOK, "media")
					resp.Header.Set("Content-Disposition", `attachment; filename="ignored.webm"`)
					return resp, nil
				}
				return httpResponse(http.StatusNotFound, ""), nil
			})
			saver := &memSaver{}
			task, err := Single(context.Background(), "https://example.com/v", tc.formatID, &Deps{Source: client, Saver: saver})
			if err != nil {
				t.Fatalf("Single: %v", err)
			}
			if saver.names[0] != tc.want {
				t.Fatalf("saved as %q, want %q", saver.names[0], tc.want)
			}
			if task.Status != model.TaskCompleted || task.Received != 5 || task.Total != 5 {
				t.Fatalf("task = %+v", task)
			}
		})
	}
}

func TestSingle_PropagatesErrors(t *testing.T) {
	client, _ := newBackend(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/api/info" {
			return httpResponse(http.StatusOK, singleInfo), nil
		}
		return httpResponse(http.StatusNotFound, ""), nil
	})
	task, err := Single(context.Background(), "https://example.com/v", "22", &Deps{Source: client, Saver: &memSaver{}})
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if task.Status != model.TaskFailed {
		t.Fatalf("status = %s", task.Status)
	}

	_, err = Single(context.Background(), "https://example.com/v", "22", &Deps{})
	if err == nil {
		t.Fatal("expected error without a source")
	}
}

func TestDirect_UsesHeaderName(t *testing.T) {
	var infoCalls int
	client, _ := newBackend(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/api/info" {
			infoCalls++
		}
		resp := httpResponse(http.StatusOK, "abc")
		resp.Header.Set("Content-Disposition", `attachment; filename*=UTF-8''Caf%C3%A9%20clip.mp4`)
		return resp, nil
	})
	dir := t.TempDir()
	task, err := Direct(context.Background(), "https://example.com/v", "best", &Deps{Source: client, Saver: DirSaver{Dir: dir}})
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	if infoCalls != 0 {
		t.Fatal("Direct must not fetch metadata")
	}
	want := filepath.Join(dir, "Café clip.mp4")
	if task.Filename != want {
		t.Fatalf("Filename = %q, want %q", task.Filename, want)
	}
	data, err := os.ReadFile(want)
	if err != nil || string(data) != "abc" {
		t.Fatalf("saved data = %q, %v", data, err)
	}
}

func TestSingle_ProgressUsesClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	client, _ := newBackend(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/api/info" {
			return httpResponse(http.StatusOK, singleInfo), nil
		}
		return httpResponse(http.StatusOK, "0123456789"), nil
	})
	var last Update
	task, err := Single(context.Background(), "https://example.com/v", "22", &Deps{
		Source:   client,
		Saver:    &memSaver{},
		Now:      clock,
		OnUpdate: func(u Update) { last = u },
	})
	if err != nil {
		t.Fatalf("Single: %v", err)
	}
	if last.Report.Speed == "" || last.Report.Percent != 100 {
		t.Fatalf("final report = %+v", last.Report)
	}
	if task.Elapsed(now) <= 0 {
		t.Fatalf("Elapsed = %v", task.Elapsed(now))
	}
}
