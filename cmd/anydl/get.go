package main

import (
	"context"
	"fmt"

	"github.com/jmagar/anydl/internal/api"
	"github.com/jmagar/anydl/internal/download"
	"github.com/jmagar/anydl/internal/formats"
	"github.com/jmagar/anydl/internal/helpers"
	"github.com/jmagar/anydl/internal/model"
	"github.com/jmagar/anydl/internal/ui"
)

// knownMeta serves metadata that was already fetched to pick a format, so
// download.Single does not ask the backend twice.
type knownMeta struct {
	download.Source
	meta *model.VideoMetadata
}

func (k knownMeta) GetVideo(context.Context, string) (*model.VideoMetadata, error) {
	return k.meta, nil
}

func (a *app) get(ctx context.Context, cmd *model.GetCmd) error {
	if !helpers.IsValidMediaURL(cmd.URL) {
		return invalidURL(cmd.URL)
	}
	label := func(int) string { return "Download" }

	action := api.NewAction("download", func(ctx context.Context) error {
		if cmd.Direct {
			_, err := download.Direct(ctx, cmd.URL, cmd.Format, a.deps(a.client, label, false))
			return err
		}
		var src download.Source = a.client
		format := cmd.Format
		if format == "" {
			meta, err := a.client.GetVideo(ctx, cmd.URL)
			if err != nil {
				return err
			}
			src = knownMeta{Source: a.client, meta: meta}
			format = model.DefaultFormatID
			kind := mediaKind(cmd.Audio)
			if best, ok := formats.Recommended(a.candidateFormats(ctx, meta, kind), a.platform, kind); ok {
				format = best.FormatID
				ui.PrintInfo(fmt.Sprintf("Using format %s: %s, %s (%s)", best.FormatID,
					formats.Label(best, kind), formats.Details(best), formats.RecommendedLabel(a.platform)))
			}
		}
		_, err := download.Single(ctx, cmd.URL, format, a.deps(src, label, false))
		return err
	})

	return a.withRetry(ctx, action)
}
