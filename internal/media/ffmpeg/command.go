package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"discsplit/internal/extract"
)

// CommandBuilder renders ffmpeg argument lists for extraction jobs.
type CommandBuilder struct {
	Codec string
}

func NewCommandBuilder(codec string) *CommandBuilder {
	codec = strings.TrimSpace(codec)
	if codec == "" {
		codec = "flac"
	}
	return &CommandBuilder{Codec: codec}
}

// Args returns the arguments (without the binary) that extract job.
func (b *CommandBuilder) Args(job extract.Job) []string {
	args := []string{
		"-y", "-nostdin", "-hide_banner", "-loglevel", "error",
	}

	w := job.Window
	switch w.Mode {
	case extract.WindowSkip:
		args = append(args,
			"-skip_initial_bytes", strconv.FormatInt(w.SkipBytes, 10),
			"-i", job.Source,
			"-t", extract.FormatClock(w.Length),
		)
	case extract.WindowTime:
		args = append(args, "-i", job.Source, "-ss", extract.FormatClock(w.Start))
		if !w.Open {
			args = append(args, "-to", extract.FormatClock(w.End))
		}
	default:
		args = append(args, "-i", job.Source)
	}

	if job.HasStream() {
		args = append(args, "-map", fmt.Sprintf("0:%d", job.StreamIndex), "-map", "-0:v")
	} else {
		args = append(args, "-vn")
	}

	args = append(args, "-c:a", b.Codec)
	args = append(args, job.AudioArgs...)
	args = append(args, metadataArgs(job.Tags)...)
	args = append(args, job.Output)
	return args
}

func metadataArgs(tags extract.Tags) []string {
	var args []string
	add := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		args = append(args, "-metadata", key+"="+value)
	}
	add("title", tags.Title)
	add("artist", tags.Artist)
	add("album", tags.Album)
	if tags.Track > 0 {
		add("track", strconv.Itoa(tags.Track))
	}
	return args
}
