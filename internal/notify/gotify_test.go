package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmagar/anydl/internal/model"
)

func TestBuildNotifier_Disabled(t *testing.T) {
	if BuildNotifier("", "tok") != nil || BuildNotifier("http://x", "") != nil {
		t.Fatal("notifier should be nil without url and token")
	}
}

func TestBuildNotifier_PostsSummary(t *testing.T) {
	var got struct {
		Title    string `json:"title"`
		Message  string `json:"message"`
		Priority int    `json:"priority"`
	}
	var token, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = r.Header.Get("X-Gotify-Token")
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	notify := BuildNotifier(srv.URL+"/", "secret")
	if err := notify(context.Background(), model.BatchSummary{Succeeded: 1, Failed: 1}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if token != "secret" || path != "/message" {
		t.Fatalf("token = %q, path = %q", token, path)
	}
	if got.Message != "Batch download completed: 1 successful, 1 failed" || got.Priority != PriorityNormal {
		t.Fatalf("payload = %+v", got)
	}
}

func TestSend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	if err := Send(context.Background(), srv.URL, "bad", "t", "m", 1); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestPriority(t *testing.T) {
	tests := map[int]int{
		model.MessagePriorityStatus:  PriorityLow,
		model.MessagePriorityWarning: PriorityNormal,
		model.MessagePriorityError:   PriorityHigh,
	}
	for severity, want := range tests {
		if got := Priority(severity); got != want {
			t.Errorf("Priority(%d) = %d, want %d", severity, got, want)
		}
	}
}
