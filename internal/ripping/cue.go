package ripping

import (
	"context"
	"os"

	"discsplit/internal/cuesheet"
	"discsplit/internal/dispatch"
	"discsplit/internal/extract"
	"discsplit/internal/logging"
	"discsplit/internal/prompt"
	"discsplit/internal/services"
)

func (p *Pipeline) runCue(ctx context.Context, input, output string) (extract.Album, dispatch.Report, error) {
	sheet, err := cuesheet.ParseFile(input)
	if err != nil {
		return extract.Album{}, dispatch.Report{}, err
	}
	media := sheet.MediaPath()
	if _, err := os.Stat(media); err != nil {
		return extract.Album{}, dispatch.Report{}, services.Wrap(services.ErrPathNotFound, "pipeline", "stat cue media", media, err)
	}
	logging.WithContext(ctx, p.logger).Info("cue sheet parsed",
		logging.String("media", media),
		logging.Int("tracks", len(sheet.Tracks)),
	)

	tracks := make([]prompt.Track, len(sheet.Tracks))
	for i, track := range sheet.Tracks {
		label := "to end"
		if length, ok := track.Duration(); ok {
			label = extract.Label(length)
		}
		tracks[i] = prompt.Track{Index: track.Number, Label: label, Suggested: track.Title}
	}

	album, names, err := p.collect(extract.Album{Artist: sheet.Performer, Title: sheet.Title}, tracks)
	if err != nil {
		return extract.Album{}, dispatch.Report{}, err
	}
	jobs := extract.ResolveCue(renamed(sheet, names), p.target(output, -1, album))
	return album, p.dispatcher.Run(ctx, jobs), nil
}

// renamed returns a copy of sheet carrying the collected names. Discarded
// tracks are dropped; each remaining track keeps its own offset and length.
func renamed(sheet *cuesheet.Sheet, names []string) *cuesheet.Sheet {
	out := *sheet
	out.Tracks = make([]cuesheet.Track, 0, len(sheet.Tracks))
	for i, track := range sheet.Tracks {
		if names[i] == "" {
			continue
		}
		track.Title = names[i]
		out.Tracks = append(out.Tracks, track)
	}
	return &out
}
