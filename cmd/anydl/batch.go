package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmagar/anydl/internal/api"
	"github.com/jmagar/anydl/internal/download"
	"github.com/jmagar/anydl/internal/helpers"
	"github.com/jmagar/anydl/internal/model"
	"github.com/jmagar/anydl/internal/ui"
)

// errBatchFailures marks a batch that finished with at least one failed item.
var errBatchFailures = errors.New("batch finished with failures")

func (a *app) batch(ctx context.Context, cmd *model.BatchCmd) error {
	targets, err := a.batchTargets(ctx, cmd)
	if err != nil {
		reportFailure(err)
		return err
	}

	b := download.NewBatch(targets, cmd.Format)
	ui.PrintInfo(fmt.Sprintf("Downloading %d items in format %s", len(b.Tasks), b.FormatID))

	action := api.NewAction("failed items", func(ctx context.Context) error {
		total := len(b.Tasks)
		label := func(i int) string { return fmt.Sprintf("[%d/%d]", i+1, total) }
		deps := a.deps(a.client, label, true)
		render := deps.OnUpdate
		deps.OnUpdate = func(u download.Update) {
			render(u)
			if u.Task.Status == model.TaskFailed && api.KindOf(u.Task.Err) == api.KindConnection {
				a.checkConnectivity(ctx)
			}
		}
		summary := download.Run(ctx, b, deps)
		ui.PrintSeverity(summary.Severity(), summary.String())
		a.notifySummary(ctx, summary)
		if summary.Failed > 0 {
			return fmt.Errorf("%w: %d of %d", errBatchFailures, summary.Failed, summary.Total())
		}
		return nil
	})

	err = action.Run(ctx)
	for err != nil && a.interactive && ctx.Err() == nil && action.CanRetry() && retryableAny(b) {
		if !a.confirm(fmt.Sprintf("Retry %d failed items? (%d/%d) [y/N]: ", len(b.Failed()), action.Retries()+1, action.Max())) {
			break
		}
		b = b.Retry()
		a.network.SetOnline(true)
		err = action.Retry(ctx)
	}
	return err
}

// batchTargets resolves the command into an ordered list of media URLs.
func (a *app) batchTargets(ctx context.Context, cmd *model.BatchCmd) ([]string, error) {
	if cmd.Playlist != "" {
		return a.playlistTargets(ctx, cmd.Playlist, cmd.Items)
	}
	urls, err := helpers.ProcessUrls(cmd.URLs)
	if err != nil {
		return nil, err
	}
	targets := make([]string, 0, len(urls))
	for _, u := range urls {
		if !helpers.IsValidMediaURL(u) {
			ui.PrintWarning(fmt.Sprintf("Skipping invalid URL %q", u))
			continue
		}
		targets = append(targets, u)
	}
	if len(targets) == 0 {
		return nil, model.ErrNoTargets
	}
	return targets, nil
}

func (a *app) playlistTargets(ctx context.Context, playlistURL, items string) ([]string, error) {
	if !helpers.IsValidMediaURL(playlistURL) {
		return nil, fmt.Errorf("invalid playlist URL %q", playlistURL)
	}
	resp, err := a.client.GetInfo(ctx, playlistURL)
	if err != nil {
		return nil, err
	}
	if !resp.IsPlaylist() {
		return nil, fmt.Errorf("%s is not a playlist", playlistURL)
	}
	entries := resp.Playlist.Videos
	indexes, err := helpers.ParseItems(items, len(entries))
	if err != nil {
		return nil, err
	}
	targets := make([]string, 0, len(indexes))
	for _, i := range indexes {
		if entries[i].URL != "" {
			targets = append(targets, entries[i].URL)
		}
	}
	if len(targets) == 0 {
		return nil, model.ErrNoTargets
	}
	return targets, nil
}

// retryableAny reports whether any failed task of b failed for a reason a
// retry could fix.
func retryableAny(b *download.Batch) bool {
	for _, t := range b.Failed() {
		if api.Explain(t.Err).Retryable {
			return true
		}
	}
	return false
}

func (a *app) notifySummary(ctx context.Context, s model.BatchSummary) {
	if a.notify == nil {
		return
	}
	if err := a.notify(ctx, s); err != nil {
		ui.PrintWarning(fmt.Sprintf("Notification failed: %v", err))
	}
}
