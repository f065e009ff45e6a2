// Package download streams media from the backend to disk, either one item at
// a time or as a sequential batch with per-item status tracking.
package download

import (
	"context"
	"net/http"
	"time"

	"github.com/jmagar/anydl/internal/api"
	"github.com/jmagar/anydl/internal/model"
	"github.com/jmagar/anydl/internal/progress"
)

// Source is the part of the backend client the download engine uses.
// *api.Client satisfies it.
type Source interface {
	OpenDownload(ctx context.Context, mediaURL, formatID string) (*http.Response, error)
	GetVideo(ctx context.Context, mediaURL string) (*model.VideoMetadata, error)
}

// Update is pushed after every received chunk and on every status change.
type Update struct {
	Index  int // position in the batch; 0 for single downloads
	Task   model.DownloadTask
	Report progress.Report
}

// Deps holds the collaborators of a download. Nil fields use defaults, so a
// zero Deps plus Source and Saver is enough.
type Deps struct {
	Source Source
	Saver  Saver

	// OnUpdate receives progress synchronously on the downloading goroutine.
	OnUpdate func(Update)

	// Sleep waits between batch items; defaults to api.SleepContext.
	Sleep api.SleepFunc
	// Now is the clock for task timestamps and throughput.
	Now func() time.Time
	// InterItemDelay is the pause after each batch item; zero means the default.
	InterItemDelay time.Duration
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) clock() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}

func (d *Deps) sleep(ctx context.Context, dur time.Duration) error {
	if d.Sleep != nil {
		return d.Sleep(ctx, dur)
	}
	return api.SleepContext(ctx, dur)
}

func (d *Deps) interItemDelay() time.Duration {
	if d.InterItemDelay > 0 {
		return d.InterItemDelay
	}
	return model.DefaultInterItemDelay
}

func (d *Deps) emit(u Update) {
	if d.OnUpdate != nil {
		d.OnUpdate(u)
	}
}
