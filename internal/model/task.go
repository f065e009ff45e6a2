package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a DownloadTask.
type TaskStatus string

const (
	TaskPending     TaskStatus = "Pending"
	TaskDownloading TaskStatus = "Downloading"
	TaskCompleted   TaskStatus = "Completed"
	TaskFailed      TaskStatus = "Failed"
)

// String returns the string representation of TaskStatus.
func (s TaskStatus) String() string {
	return string(s)
}

// IsFinished returns true for the terminal states.
func (s TaskStatus) IsFinished() bool {
	return s == TaskCompleted || s == TaskFailed
}

// DownloadTask tracks one item of a download. It is owned by the orchestrator
// processing it; callers outside that loop should read Snapshot copies.
type DownloadTask struct {
	ID         string
	URL        string
	FormatID   string
	Status     TaskStatus
	Received   int64
	Total      int64 // 0 when the server did not declare a length
	StartedAt  time.Time
	FinishedAt time.Time
	Filename   string
	Err        error
}

// NewDownloadTask creates a Pending task for url and formatID.
func NewDownloadTask(url, formatID string) *DownloadTask {
	return &DownloadTask{
		ID:       uuid.NewString(),
		URL:      url,
		FormatID: formatID,
		Status:   TaskPending,
	}
}

// isValidTransition checks if a status transition is allowed.
// Transitions only move forward; nothing re-enters Pending.
func isValidTransition(from, to TaskStatus) bool {
	switch from {
	case TaskPending:
		return to == TaskDownloading
	case TaskDownloading:
		return to == TaskCompleted || to == TaskFailed
	default:
		return false
	}
}

func (t *DownloadTask) transition(to TaskStatus) error {
	if !isValidTransition(t.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
	}
	t.Status = to
	return nil
}

// Start moves the task from Pending to Downloading.
func (t *DownloadTask) Start(now time.Time) error {
	if err := t.transition(TaskDownloading); err != nil {
		return err
	}
	t.StartedAt = now
	t.Received = 0
	return nil
}

// Progress records the cumulative byte count and the declared total.
func (t *DownloadTask) Progress(received, total int64) {
	t.Received = received
	if total > 0 {
		t.Total = total
	}
}

// Complete moves the task to Completed and records the saved file name.
func (t *DownloadTask) Complete(now time.Time, filename string) error {
	if err := t.transition(TaskCompleted); err != nil {
		return err
	}
	t.FinishedAt = now
	t.Filename = filename
	return nil
}

// Fail moves the task to Failed and records the cause.
func (t *DownloadTask) Fail(now time.Time, cause error) error {
	if err := t.transition(TaskFailed); err != nil {
		return err
	}
	t.FinishedAt = now
	t.Err = cause
	return nil
}

// Elapsed returns the time spent downloading so far, or in total once finished.
func (t *DownloadTask) Elapsed(now time.Time) time.Duration {
	if t.StartedAt.IsZero() {
		return 0
	}
	if !t.FinishedAt.IsZero() {
		return t.FinishedAt.Sub(t.StartedAt)
	}
	return now.Sub(t.StartedAt)
}

// Snapshot returns a copy safe to hand to renderers.
func (t *DownloadTask) Snapshot() DownloadTask {
	return *t
}

// BatchSummary aggregates the terminal states of a batch.
type BatchSummary struct {
	Succeeded int
	Failed    int
}

// Total returns the number of processed items.
func (s BatchSummary) Total() int {
	return s.Succeeded + s.Failed
}

// Severity classifies the outcome for reporting: info when nothing failed,
// warning on partial failure, error when nothing succeeded.
func (s BatchSummary) Severity() int {
	switch {
	case s.Failed == 0:
		return MessagePriorityStatus
	case s.Succeeded > 0:
		return MessagePriorityWarning
	default:
		return MessagePriorityError
	}
}

// String renders the summary the way it is shown after a batch.
func (s BatchSummary) String() string {
	return fmt.Sprintf("Batch download completed: %d successful, %d failed", s.Succeeded, s.Failed)
}
