package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/jmagar/anydl/internal/api"
	"github.com/jmagar/anydl/internal/download"
	"github.com/jmagar/anydl/internal/formats"
	"github.com/jmagar/anydl/internal/model"
	"github.com/jmagar/anydl/internal/notify"
	"github.com/jmagar/anydl/internal/ui"
)

// app carries the resolved config and collaborators of one invocation.
type app struct {
	cfg      *model.Config
	client   *api.Client
	network  *api.Connectivity
	platform formats.Platform
	notify   notify.Notifier

	in          *bufio.Reader
	interactive bool

	// liveProgress redraws a progress bar in place; off when stdout is not a terminal.
	liveProgress bool
}

func newApp(cfg *model.Config, in io.Reader, interactive bool) *app {
	network := &api.Connectivity{}
	opts := clientOptions(cfg)
	opts.Network = network
	return &app{
		cfg:          cfg,
		client:       api.NewClient(opts),
		network:      network,
		platform:     formats.ParsePlatform(cfg.Platform),
		notify:       notify.BuildNotifier(cfg.GotifyURL, cfg.GotifyToken),
		in:           bufio.NewReader(in),
		interactive:  interactive,
		liveProgress: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func clientOptions(cfg *model.Config) api.Options {
	return api.Options{
		BaseURL:            cfg.ServerURL,
		APIPrefix:          cfg.APIPrefix,
		AttemptTimeout:     time.Duration(cfg.AttemptTimeoutSeconds) * time.Second,
		MaxAttempts:        cfg.MaxAttempts,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
		CircuitThreshold:   cfg.CircuitThreshold,
		CircuitReset:       time.Duration(cfg.CircuitResetSeconds) * time.Second,
	}
}

// deps builds download collaborators that save under cfg.OutPath and render
// progress labelled by label(index). Failed items are reported only when
// showFailures is set; single downloads report through withRetry instead.
func (a *app) deps(src download.Source, label func(int) string, showFailures bool) *download.Deps {
	return &download.Deps{
		Source:         src,
		Saver:          download.DirSaver{Dir: a.cfg.OutPath},
		InterItemDelay: time.Duration(a.cfg.InterItemDelayMs) * time.Millisecond,
		OnUpdate:       a.renderUpdate(label, showFailures),
	}
}

func (a *app) renderUpdate(label func(int) string, showFailures bool) func(download.Update) {
	return func(u download.Update) {
		name := label(u.Index)
		switch u.Task.Status {
		case model.TaskDownloading:
			if a.liveProgress && u.Task.Received > 0 {
				ui.RenderProgress(name, u.Report, u.Task.Received, u.Task.Total)
			} else if u.Task.Received == 0 && u.Task.Total == 0 {
				ui.PrintDownload(fmt.Sprintf("%s %s", name, u.Task.URL))
			}
		case model.TaskCompleted:
			a.endLine()
			ui.PrintSuccess(fmt.Sprintf("%s saved to %s (%s)", name, u.Task.Filename, sizeLabel(u.Task.Received)))
		case model.TaskFailed:
			a.endLine()
			if !showFailures {
				return
			}
			ue := api.Explain(u.Task.Err)
			ui.PrintFailure(fmt.Sprintf("%s %s", name, ue.Message), ue.Solution)
		}
	}
}

// checkConnectivity probes the backend after a transport failure. When the
// probe fails too, the client is marked offline so the remaining requests of
// this run fail fast instead of backing off.
func (a *app) checkConnectivity(ctx context.Context) {
	if !a.network.Online() {
		return
	}
	if err := a.client.Ping(ctx); err != nil && ctx.Err() == nil {
		a.network.SetOnline(false)
		ui.PrintWarning("Backend unreachable; remaining items will be skipped")
	}
}

func (a *app) endLine() {
	if a.liveProgress {
		fmt.Println()
	}
}

// withRetry runs action and, after a retryable failure, offers to re-run it
// until it succeeds, the user declines, or the retry budget is spent.
func (a *app) withRetry(ctx context.Context, action *api.Action) error {
	err := action.Run(ctx)
	for err != nil {
		ue := api.Explain(err)
		ui.PrintFailure(ue.Message, ue.Solution)
		if !ue.Retryable || !a.interactive || ctx.Err() != nil {
			return err
		}
		if !action.CanRetry() {
			ui.PrintError(api.ErrRetriesExhausted.Error())
			return err
		}
		if !a.confirm(fmt.Sprintf("Retry %s? (%d/%d) [y/N]: ", action.Label, action.Retries()+1, action.Max())) {
			return err
		}
		err = action.Retry(ctx)
	}
	return nil
}

func (a *app) confirm(prompt string) bool {
	fmt.Printf("%s%s%s %s", ui.ColorCyan, ui.SymbolArrow, ui.ColorReset, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Println()
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// reportFailure prints err with its suggested solution.
func reportFailure(err error) {
	ue := api.Explain(err)
	ui.PrintFailure(ue.Message, ue.Solution)
}
