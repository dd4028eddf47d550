package extract

import (
	"fmt"
	"time"

	"discsplit/internal/cuesheet"
	"discsplit/internal/disc/dvdaudio"
	"discsplit/internal/services"
)

// ResolveChapters turns chapter lengths into time-window jobs. A running
// cursor accumulates every chapter, so a discarded chapter (empty name) still
// shifts the start of the chapters after it.
func ResolveChapters(chapters []time.Duration, names []string, target Target) ([]Job, error) {
	if err := checkNames(len(chapters), len(names)); err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(chapters))
	var cursor time.Duration
	for i, length := range chapters {
		end := cursor + length
		if names[i] != "" {
			jobs = append(jobs, target.job(len(jobs), i+1, names[i], Window{
				Mode:  WindowTime,
				Start: cursor,
				End:   end,
			}))
		}
		cursor = end
	}
	return jobs, nil
}

// ResolveSectors turns decoded DVD-Audio tracks into byte-skip jobs against
// the concatenated AOB data. Each job reads Duration from its first sector.
func ResolveSectors(tracks []dvdaudio.Track, names []string, target Target) ([]Job, error) {
	if err := checkNames(len(tracks), len(names)); err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(tracks))
	for i, track := range tracks {
		if names[i] == "" {
			continue
		}
		jobs = append(jobs, target.job(len(jobs), i+1, names[i], Window{
			Mode:      WindowSkip,
			SkipBytes: track.ByteOffset(),
			Length:    track.Duration(),
		}))
	}
	return jobs, nil
}

// ResolveCue builds one job per cue track against the sheet's media file.
// Tracks keep their cue numbering; the final track runs to end of file.
func ResolveCue(sheet *cuesheet.Sheet, target Target) []Job {
	target.Source = sheet.MediaPath()
	target.StreamIndex = -1
	if target.Album.Artist == "" {
		target.Album.Artist = sheet.Performer
	}
	if target.Album.Title == "" {
		target.Album.Title = sheet.Title
	}

	jobs := make([]Job, 0, len(sheet.Tracks))
	for _, track := range sheet.Tracks {
		name := track.Title
		if name == "" {
			name = fmt.Sprintf("Track %02d", track.Number)
		}
		window := Window{Mode: WindowTime, Start: track.Start(), Open: true}
		if length, ok := track.Duration(); ok {
			window.End = window.Start + length
			window.Open = false
		}
		job := target.job(len(jobs), track.Number, name, window)
		if track.Performer != "" {
			job.Tags.Artist = track.Performer
		}
		jobs = append(jobs, job)
	}
	return jobs
}

func checkNames(tracks, names int) error {
	if tracks == names {
		return nil
	}
	return services.Wrap(
		services.ErrConfiguration,
		"resolve",
		"match names",
		fmt.Sprintf("%d track names supplied for %d tracks", names, tracks),
		nil,
	)
}

// SourceFile is a per-track intermediate file, such as a DSF written by
// sacd_extract.
type SourceFile struct {
	Index int
	Path  string
}

// ResolveFiles builds one whole-file job per named source. audioArgs are
// appended to every job's transcoder options.
func ResolveFiles(files []SourceFile, names []string, target Target, audioArgs []string) ([]Job, error) {
	if err := checkNames(len(files), len(names)); err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(files))
	for i, file := range files {
		if names[i] == "" {
			continue
		}
		target.Source = file.Path
		target.StreamIndex = -1
		job := target.job(len(jobs), file.Index, names[i], Window{Mode: WindowWhole})
		job.AudioArgs = append([]string(nil), audioArgs...)
		jobs = append(jobs, job)
	}
	return jobs, nil
}
