package download

import (
	"context"

	"github.com/jmagar/anydl/internal/model"
)

// Batch is an ordered set of downloads sharing one format id.
type Batch struct {
	FormatID string
	Tasks    []*model.DownloadTask
}

// NewBatch creates a Pending task per target, in order.
func NewBatch(targets []string, formatID string) *Batch {
	if formatID == "" {
		formatID = model.DefaultFormatID
	}
	b := &Batch{FormatID: formatID, Tasks: make([]*model.DownloadTask, 0, len(targets))}
	for _, t := range targets {
		b.Tasks = append(b.Tasks, model.NewDownloadTask(t, formatID))
	}
	return b
}

// Run downloads every Pending task strictly one after another. A failed item
// is marked Failed and the batch moves on; a pause of deps.InterItemDelay
// follows each item. Cancelling ctx makes the remaining items fail fast.
// Tasks already finished by an earlier Run are counted, not repeated.
func Run(ctx context.Context, b *Batch, deps *Deps) model.BatchSummary {
	if deps == nil {
		deps = &Deps{}
	}
	var summary model.BatchSummary
	for i, task := range b.Tasks {
		if task.Status == model.TaskPending {
			_ = runTask(ctx, i, task, deps, headerName)
			_ = deps.sleep(ctx, deps.interItemDelay())
		}
		switch task.Status {
		case model.TaskCompleted:
			summary.Succeeded++
		case model.TaskFailed:
			summary.Failed++
		}
	}
	return summary
}

// Failed returns the tasks that ended in Failed, in batch order.
func (b *Batch) Failed() []*model.DownloadTask {
	var out []*model.DownloadTask
	for _, t := range b.Tasks {
		if t.Status == model.TaskFailed {
			out = append(out, t)
		}
	}
	return out
}

// Retry returns a new batch with the failed targets of b.
func (b *Batch) Retry() *Batch {
	failed := b.Failed()
	targets := make([]string, len(failed))
	for i, t := range failed {
		targets[i] = t.URL
	}
	return NewBatch(targets, b.FormatID)
}
