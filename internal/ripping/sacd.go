package ripping

import (
	"context"
	"path/filepath"
	"strconv"

	"discsplit/internal/dispatch"
	"discsplit/internal/extract"
	"discsplit/internal/logging"
	"discsplit/internal/prompt"
)

func (p *Pipeline) runSACD(ctx context.Context, input, output string) (extract.Album, dispatch.Report, error) {
	logger := logging.WithContext(ctx, p.logger)
	result, err := p.extractor.Extract(ctx, input, output)
	if err != nil {
		return extract.Album{}, dispatch.Report{}, err
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Warn("failed to remove dsf directory", logging.String("path", result.Dir), logging.Error(err))
		}
	}()

	tracks := make([]prompt.Track, len(result.Tracks))
	files := make([]extract.SourceFile, len(result.Tracks))
	for i, track := range result.Tracks {
		tracks[i] = prompt.Track{Index: track.Index, Label: filepath.Base(track.Path), Suggested: track.Title}
		files[i] = extract.SourceFile{Index: track.Index, Path: track.Path}
	}

	album, names, err := p.collect(extract.Album{}, tracks)
	if err != nil {
		return extract.Album{}, dispatch.Report{}, err
	}
	audioArgs := []string{"-sample_fmt", "s32", "-ar", strconv.Itoa(p.cfg.Output.DSDSampleRate)}
	jobs, err := extract.ResolveFiles(files, names, p.target(output, -1, album), audioArgs)
	if err != nil {
		return extract.Album{}, dispatch.Report{}, err
	}
	return album, p.dispatcher.Run(ctx, jobs), nil
}
