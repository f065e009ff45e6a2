package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmagar/anydl/internal/api"
	"github.com/jmagar/anydl/internal/model"
	"github.com/jmagar/anydl/internal/testutil"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func httpResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:        make(http.Header),
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}

// memSaver records saved payloads instead of touching disk.
type memSaver struct {
	mu    sync.Mutex
	names []string
	data  map[string]string
}

func (s *memSaver) Save(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string]string)
	}
	s.names = append(s.names, name)
	s.data[name] = string(data)
	return "/out/" + name, nil
}

func newBackend(t *testing.T, handle func(req *http.Request) (*http.Response, error)) (*api.Client, *testutil.Sleeps) {
	t.Helper()
	sleeps := &testutil.Sleeps{}
	c := api.NewClient(api.Options{
		BaseURL:    "http://backend.test",
		HTTPClient: &http.Client{Transport: roundTripFunc(handle)},
		Network:    &api.Connectivity{},
		Sleep:      sleeps.Sleep,
	})
	return c, sleeps
}

func TestRun_IsolatesFailures(t *testing.T) {
	var requested []string
	client, apiSleeps := newBackend(t, func(req *http.Request) (*http.Response, error) {
		target := req.URL.Query().Get("url")
		requested = append(requested, target)
		if req.URL.Query().Get("format_id") != "18" {
			return nil, fmt.Errorf("unexpected format %q", req.URL.Query().Get("format_id"))
		}
		if target == "https://example.com/2" {
			return httpResponse(http.StatusForbidden, `{"detail":"private video"}`), nil
		}
		resp := httpResponse(http.StatusOK, "payload-"+target[len(target)-1:])
		resp.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="clip %s.mp4"`, target[len(target)-1:]))
		return resp, nil
	})
	saver := &memSaver{}
	batchSleeps := &testutil.Sleeps{}
	var updates []Update
	deps := &Deps{
		Source:   client,
		Saver:    saver,
		Sleep:    batchSleeps.Sleep,
		OnUpdate: func(u Update) { updates = append(updates, u) },
	}

	b := NewBatch([]string{"https://example.com/1", "https://example.com/2", "https://example.com/3"}, "18")
	summary := Run(context.Background(), b, deps)

	if summary != (model.BatchSummary{Succeeded: 2, Failed: 1}) {
		t.Fatalf("summary = %+v", summary)
	}
	wantStatus := []model.TaskStatus{model.TaskCompleted, model.TaskFailed, model.TaskCompleted}
	for i, task := range b.Tasks {
		if task.Status != wantStatus[i] {
			t.Errorf("task %d status = %s, want %s", i, task.Status, wantStatus[i])
		}
	}
	if !errors.Is(b.Tasks[1].Err, api.ErrForbidden) || b.Tasks[1].Err.Error() != "private video" {
		t.Errorf("task 2 err = %v", b.Tasks[1].Err)
	}
	if got := strings.Join(requested, ","); got != "https://example.com/1,https://example.com/2,https://example.com/3" {
		t.Errorf("request order = %s", got)
	}
	if got := strings.Join(saver.names, ","); got != "clip 1.mp4,clip 3.mp4" {
		t.Errorf("saved = %s", got)
	}
	if saver.data["clip 3.mp4"] != "payload-3" {
		t.Errorf("payload = %q", saver.data["clip 3.mp4"])
	}
	if b.Tasks[0].Filename != "/out/clip 1.mp4" {
		t.Errorf("Filename = %q", b.Tasks[0].Filename)
	}
	waits := batchSleeps.Waits()
	if len(waits) != 3 || waits[0] != 500*time.Millisecond {
		t.Errorf("inter-item waits = %v", waits)
	}
	if len(apiSleeps.Waits()) != 0 {
		t.Errorf("forbidden must not be retried, waits = %v", apiSleeps.Waits())
	}

	// Updates arrive in item order and each item ends before the next starts.
	for i := 1; i < len(updates); i++ {
		prev, cur := updates[i-1], updates[i]
		if cur.Index < prev.Index {
			t.Fatalf("update for item %d after item %d", cur.Index, prev.Index)
		}
		if cur.Index != prev.Index && !prev.Task.Status.IsFinished() {
			t.Fatalf("item %d started while item %d was %s", cur.Index, prev.Index, prev.Task.Status)
		}
	}
	final := updates[len(updates)-1]
	if final.Index != 2 || final.Task.Status != model.TaskCompleted || !final.Report.HasPercent || final.Report.Percent != 100 {
		t.Errorf("final update = %+v", final)
	}
}

func TestRun_DefaultFilenameWithoutHeader(t *testing.T) {
	client, _ := newBackend(t, func(*http.Request) (*http.Response, error) {
		return httpResponse(http.StatusOK, "bytes"), nil
	})
	saver := &memSaver{}
	b := NewBatch([]string{"https://example.com/x"}, "")
	summary := Run(context.Background(), b, &Deps{Source: client, Saver: saver, Sleep: (&testutil.Sleeps{}).Sleep})

	if summary.Succeeded != 1 || saver.names[0] != model.DefaultFilename {
		t.Fatalf("summary = %+v, saved = %v", summary, saver.names)
	}
	if b.FormatID != model.DefaultFormatID {
		t.Fatalf("FormatID = %q", b.FormatID)
	}
}

func TestRun_CancelledContextFailsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	client, _ := newBackend(t, func(*http.Request) (*http.Response, error) {
		calls++
		cancel()
		return httpResponse(http.StatusOK, "partial"), nil
	})
	b := NewBatch([]string{"https://example.com/1", "https://example.com/2"}, "best")
	summary := Run(ctx, b, &Deps{Source: client, Saver: &memSaver{}, Sleep: (&testutil.Sleeps{}).Sleep})

	if summary.Failed != 2 || summary.Succeeded != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	for i, task := range b.Tasks {
		if task.Status != model.TaskFailed || !errors.Is(task.Err, context.Canceled) {
			t.Errorf("task %d = %s (%v)", i, task.Status, task.Err)
		}
	}
	if calls != 1 {
		t.Fatalf("backend called %d times after cancellation", calls)
	}
	if got := len(b.Retry().Tasks); got != 2 {
		t.Fatalf("Retry batch has %d tasks", got)
	}
}

func TestRun_SkipsFinishedTasks(t *testing.T) {
	client, _ := newBackend(t, func(*http.Request) (*http.Response, error) {
		return httpResponse(http.StatusOK, "ok"), nil
	})
	b := NewBatch([]string{"https://example.com/1"}, "best")
	deps := &Deps{Source: client, Saver: &memSaver{}, Sleep: (&testutil.Sleeps{}).Sleep}
	first := Run(context.Background(), b, deps)
	second := Run(context.Background(), b, deps)
	if first != second || second.Succeeded != 1 {
		t.Fatalf("first = %+v, second = %+v", first, second)
	}
}

func TestRun_NilDepsFailsItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := NewBatch([]string{"https://example.com/1", "https://example.com/2"}, "")
	summary := Run(ctx, b, nil)
	if summary.Failed != 2 || summary.Succeeded != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	for i, task := range b.Tasks {
		if task.Status != model.TaskFailed || !errors.Is(task.Err, errNoSource) {
			t.Errorf("task %d = %s (%v)", i, task.Status, task.Err)
		}
	}
}
