package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/jmagar/anydl/internal/formats"
	"github.com/jmagar/anydl/internal/helpers"
	"github.com/jmagar/anydl/internal/model"
	"github.com/jmagar/anydl/internal/ui"
)

func (a *app) info(ctx context.Context, cmd *model.InfoCmd) error {
	if !helpers.IsValidMediaURL(cmd.URL) {
		return invalidURL(cmd.URL)
	}
	resp, err := a.client.GetInfo(ctx, cmd.URL)
	if err != nil {
		reportFailure(err)
		return err
	}
	if resp.IsPlaylist() {
		printPlaylist(resp.Playlist)
		return nil
	}

	meta := resp.Video
	kind := mediaKind(cmd.Audio)
	ui.PrintHeader(meta.Title)
	ui.PrintKeyValue("Duration", helpers.FormatDuration(meta.Duration), ui.ColorYellow)
	ui.PrintKeyValue("Platform", a.platform.DisplayName(), ui.ColorYellow)

	list := formats.Rank(a.candidateFormats(ctx, meta, kind), a.platform, kind)
	if len(list) == 0 {
		ui.PrintWarning(fmt.Sprintf("No %s formats available", kind))
		return nil
	}
	section := "Video formats"
	if kind == model.MediaKindAudio {
		section = "Audio formats"
	}
	ui.PrintSection(section)
	formatTable(list, kind, a.platform).Print()
	return nil
}

// candidateFormats returns the video or audio formats of meta. Missing HLS
// heights are probed so ranking can use them.
func (a *app) candidateFormats(ctx context.Context, meta *model.VideoMetadata, kind model.MediaKind) []model.FormatDescriptor {
	if kind == model.MediaKindAudio {
		return meta.AudioFormats
	}
	return formats.ResolveHeights(ctx, a.client, meta.Formats)
}

func formatTable(list []model.FormatDescriptor, kind model.MediaKind, p formats.Platform) *ui.Table {
	t := ui.NewTable([]ui.TableColumn{
		{Header: "ID", Width: 8},
		{Header: "Quality", Width: 22},
		{Header: "Ext", Width: 5},
		{Header: "Size", Width: 9, Align: "right"},
		{Header: "", Width: 22},
	})
	for i, f := range list {
		tag := formats.DownloadLabel(f, i == 0)
		if i == 0 {
			tag = ui.SymbolStar + " " + formats.RecommendedLabel(p)
		}
		t.AddRow(f.FormatID, formats.Label(f, kind), f.Ext, sizeLabel(int64(f.Filesize)), tag)
	}
	return t
}

func printPlaylist(p *model.PlaylistMetadata) {
	ui.PrintHeader(p.Title)
	if p.Uploader != "" {
		ui.PrintKeyValue("Uploader", p.Uploader, ui.ColorYellow)
	}
	ui.PrintKeyValue("Items", fmt.Sprintf("%d", p.Count()), ui.ColorYellow)
	items := make([]string, len(p.Videos))
	for i, v := range p.Videos {
		items[i] = fmt.Sprintf("%2d. %s (%s)", i+1, v.Title, helpers.FormatDuration(v.Duration))
	}
	ui.PrintList(items, ui.ColorCyan)
	ui.PrintInfo("Download entries with: anydl batch --playlist <url> --items 1,3-5")
}

func mediaKind(audio bool) model.MediaKind {
	if audio {
		return model.MediaKindAudio
	}
	return model.MediaKindVideo
}

func sizeLabel(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}

func invalidURL(u string) error {
	err := fmt.Errorf("invalid media URL %q", u)
	ui.PrintFailure(err.Error(), "Please enter a valid http(s) URL.")
	return err
}
