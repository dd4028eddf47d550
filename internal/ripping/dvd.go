package ripping

import (
	"context"
	"fmt"
	"time"

	"discsplit/internal/disc"
	"discsplit/internal/disc/dvdaudio"
	"discsplit/internal/dispatch"
	"discsplit/internal/extract"
	"discsplit/internal/logging"
	"discsplit/internal/media/audio"
	"discsplit/internal/prompt"
	"discsplit/internal/services"
)

func (p *Pipeline) runDVDVideo(ctx context.Context, input, output string) (extract.Album, dispatch.Report, error) {
	logger := logging.WithContext(ctx, p.logger)
	title, err := disc.ScanTitles(input, p.layout(disc.VideoLayout))
	if err != nil {
		return extract.Album{}, dispatch.Report{}, err
	}
	logger.Info("title selected",
		logging.String("title", title.ID),
		logging.Int("segments", len(title.Segments)),
		logging.Int64("bytes", title.Size),
	)

	playback, err := p.chapters.Chapters(disc.VideoLayout.NavigationFile(title.Dir, title.ID))
	if err != nil {
		return extract.Album{}, dispatch.Report{}, err
	}
	chapters := make([]time.Duration, len(playback))
	tracks := make([]prompt.Track, len(playback))
	for i, pt := range playback {
		chapters[i] = pt.Duration()
		tracks[i] = prompt.Track{Index: i + 1, Label: extract.Label(chapters[i])}
	}

	stream, err := p.selectStream(ctx, title.ProgramSegment(), p.cfg.Streams.DVDVideo)
	if err != nil {
		return extract.Album{}, dispatch.Report{}, err
	}

	album, names, err := p.collect(extract.Album{}, tracks)
	if err != nil {
		return extract.Album{}, dispatch.Report{}, err
	}
	target := p.target(output, stream, album)
	report, err := p.dispatcher.RunConcatenated(ctx, title.Segments, ".vob", func(source string) ([]extract.Job, error) {
		target.Source = source
		return extract.ResolveChapters(chapters, names, target)
	})
	return album, report, err
}

func (p *Pipeline) runDVDAudio(ctx context.Context, input, output string) (extract.Album, dispatch.Report, error) {
	logger := logging.WithContext(ctx, p.logger)
	title, err := disc.ScanTitles(input, p.layout(disc.AudioLayout))
	if err != nil {
		return extract.Album{}, dispatch.Report{}, err
	}
	logger.Info("title selected",
		logging.String("title", title.ID),
		logging.Int("segments", len(title.Segments)),
		logging.Int64("bytes", title.Size),
	)

	table, err := dvdaudio.DecodeFile(disc.AudioLayout.NavigationFile(title.Dir, title.ID))
	if err != nil {
		return extract.Album{}, dispatch.Report{}, err
	}
	if table.TitleCount() > 1 {
		logger.Warn("multiple audio titles found; only the first is extracted",
			logging.Int("titles", table.TitleCount()),
		)
	}
	tracks := make([]prompt.Track, len(table.Tracks))
	for i, track := range table.Tracks {
		tracks[i] = prompt.Track{Index: i + 1, Label: extract.Label(track.Duration())}
	}

	stream, err := p.selectStream(ctx, title.ProgramSegment(), p.cfg.Streams.DVDAudio)
	if err != nil {
		return extract.Album{}, dispatch.Report{}, err
	}

	album, names, err := p.collect(extract.Album{}, tracks)
	if err != nil {
		return extract.Album{}, dispatch.Report{}, err
	}
	target := p.target(output, stream, album)
	report, err := p.dispatcher.RunConcatenated(ctx, title.Segments, ".aob", func(source string) ([]extract.Job, error) {
		target.Source = source
		return extract.ResolveSectors(table.Tracks, names, target)
	})
	return album, report, err
}

// selectStream probes the first segment and picks the multichannel stream.
func (p *Pipeline) selectStream(ctx context.Context, segment string, priority []string) (int, error) {
	probe, err := p.prober.Inspect(ctx, segment)
	if err != nil {
		return -1, services.Wrap(services.ErrExternalTool, "pipeline", "probe", segment, err)
	}
	sel, err := audio.Select(probe.Streams, priority)
	if err != nil {
		return -1, err
	}
	logging.WithContext(ctx, p.logger).Info("audio stream selected",
		logging.Int("stream", sel.Position),
		logging.String("stream_summary", sel.Label()),
		logging.Int("candidates", sel.Survivors),
	)
	return sel.Position, nil
}

func (p *Pipeline) collect(suggested extract.Album, tracks []prompt.Track) (extract.Album, []string, error) {
	album, err := p.collector.Album(suggested)
	if err != nil {
		return extract.Album{}, nil, err
	}
	names, err := p.collector.TrackNames(tracks)
	if err != nil {
		return extract.Album{}, nil, err
	}
	if len(names) != len(tracks) {
		return extract.Album{}, nil, services.Wrap(services.ErrConfiguration, "pipeline", "collect names",
			fmt.Sprintf("%d names for %d tracks", len(names), len(tracks)), nil)
	}
	return album, names, nil
}

func (p *Pipeline) target(output string, stream int, album extract.Album) extract.Target {
	return extract.Target{
		StreamIndex: stream,
		OutputDir:   output,
		Extension:   p.cfg.Output.Extension,
		Album:       album,
	}
}

func (p *Pipeline) layout(base disc.Layout) disc.Layout {
	if p.cfg.Dispatch.SkipMenuSegments {
		return base.WithoutMenu()
	}
	return base
}
