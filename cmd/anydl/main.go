// Command anydl inspects and downloads media through an extraction backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alexflint/go-arg"
	"golang.org/x/term"

	"github.com/jmagar/anydl/internal/api"
	"github.com/jmagar/anydl/internal/config"
	"github.com/jmagar/anydl/internal/model"
	"github.com/jmagar/anydl/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, term.IsTerminal(int(os.Stdin.Fd())))
	stop()
	os.Exit(code)
}

// run executes one CLI invocation and returns the process exit code.
// interactive enables retry prompts read from in.
func run(ctx context.Context, argv []string, in io.Reader, interactive bool) int {
	model.ArgsDescriptionFunc = description
	cfg, args, parser, err := config.ParseCfg(argv)
	switch {
	case errors.Is(err, arg.ErrHelp):
		parser.WriteHelp(os.Stdout)
		return 0
	case errors.Is(err, config.ErrNoSubcommand):
		parser.WriteHelp(os.Stdout)
		return 2
	case errors.Is(err, config.ErrUsage):
		parser.WriteUsage(os.Stderr)
		fmt.Fprintln(os.Stderr, "error:", err)
		return 2
	case err != nil:
		ui.PrintError(fmt.Sprintf("Failed to parse config/args: %v", err))
		return 1
	}

	if cfg.APILogPath != "" {
		if err := api.InitAPILogger(cfg.APILogPath); err != nil {
			ui.PrintWarning(fmt.Sprintf("API log disabled: %v", err))
		}
		defer api.CloseAPILogger()
	}

	a := newApp(cfg, in, interactive)
	switch {
	case args.Info != nil:
		err = a.info(ctx, args.Info)
	case args.Get != nil:
		err = a.get(ctx, args.Get)
	case args.Batch != nil:
		err = a.batch(ctx, args.Batch)
	case args.Ping != nil:
		err = a.ping(ctx)
	}
	if err != nil {
		return 1
	}
	return 0
}

func description() string {
	return fmt.Sprintf("%sanydl%s downloads media through a yt-dlp style backend.\n"+
		"Config is read from --config, ./config.json, ~/.anydl/config.json or ~/.config/anydl/config.{json,yaml}.",
		ui.ColorBold, ui.ColorReset)
}
