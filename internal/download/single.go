package download

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmagar/anydl/internal/model"
	"github.com/jmagar/anydl/internal/progress"
)

var errNoSource = errors.New("download: no source configured")

// namer chooses the saved file name once the payload is known.
type namer func(p *Payload) string

// runTask drives task through Downloading to its terminal state, pushing an
// update on every transition and chunk. The returned error is the cause of a
// Failed outcome.
func runTask(ctx context.Context, index int, task *model.DownloadTask, deps *Deps, name namer) error {
	if err := task.Start(deps.now()); err != nil {
		return err
	}
	deps.emit(Update{Index: index, Task: task.Snapshot()})

	path, report, err := fetchAndSave(ctx, index, task, deps, name)
	if err != nil {
		_ = task.Fail(deps.now(), err)
		deps.emit(Update{Index: index, Task: task.Snapshot(), Report: report})
		return err
	}
	_ = task.Complete(deps.now(), path)
	deps.emit(Update{Index: index, Task: task.Snapshot(), Report: report})
	return nil
}

func fetchAndSave(ctx context.Context, index int, task *model.DownloadTask, deps *Deps, name namer) (string, progress.Report, error) {
	var report progress.Report
	if deps.Source == nil || deps.Saver == nil {
		return "", report, errNoSource
	}
	if err := ctx.Err(); err != nil {
		return "", report, err
	}
	resp, err := deps.Source.OpenDownload(ctx, task.URL, task.FormatID)
	if err != nil {
		return "", report, err
	}
	total := contentLength(resp)
	meter := progress.NewMeter(total, deps.clock())
	task.Progress(0, total)

	payload, err := readAll(ctx, resp, func(received int64) {
		task.Progress(received, total)
		report = meter.Update(received)
		deps.emit(Update{Index: index, Task: task.Snapshot(), Report: report})
	})
	if err != nil {
		return "", report, err
	}
	path, err := deps.Saver.Save(name(payload), payload.Data)
	if err != nil {
		return "", report, fmt.Errorf("save: %w", err)
	}
	return path, report, nil
}

// Single downloads one media item in formatID. Metadata is fetched first so
// the file can be named after the title, with an extension inferred from the
// chosen format. Errors are returned to the caller.
func Single(ctx context.Context, mediaURL, formatID string, deps *Deps) (*model.DownloadTask, error) {
	if deps.Source == nil {
		return nil, errNoSource
	}
	if formatID == "" {
		formatID = model.DefaultFormatID
	}
	meta, err := deps.Source.GetVideo(ctx, mediaURL)
	if err != nil {
		return nil, err
	}
	f, found := meta.FindFormat(formatID)
	filename := TitleFilename(meta.Title, f, found)

	task := model.NewDownloadTask(mediaURL, formatID)
	err = runTask(ctx, 0, task, deps, func(*Payload) string { return filename })
	return task, err
}

// Direct downloads without a metadata lookup and names the file from the
// response headers, falling back to model.DefaultFilename.
func Direct(ctx context.Context, mediaURL, formatID string, deps *Deps) (*model.DownloadTask, error) {
	if formatID == "" {
		formatID = model.DefaultFormatID
	}
	task := model.NewDownloadTask(mediaURL, formatID)
	err := runTask(ctx, 0, task, deps, headerName)
	return task, err
}

func headerName(p *Payload) string {
	return FilenameFromHeader(p.Header)
}
