package extract

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"discsplit/internal/textutil"
)

// WindowMode selects how a Window bounds the source.
type WindowMode int

const (
	// WindowTime seeks to Start and stops at End unless Open is set.
	WindowTime WindowMode = iota
	// WindowSkip discards SkipBytes of input and then reads for Length.
	WindowSkip
	// WindowWhole transcodes the entire source.
	WindowWhole
)

// Window is the slice of the source a job extracts.
type Window struct {
	Mode      WindowMode
	Start     time.Duration
	End       time.Duration
	Open      bool
	SkipBytes int64
	Length    time.Duration
}

// Tags are the metadata written into each output file.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Track  int
}

// Job is one extraction handed to the dispatcher. Jobs are values; nothing
// mutates them after resolution.
type Job struct {
	Seq         int
	Index       int
	Name        string
	Source      string
	Window      Window
	StreamIndex int
	Output      string
	Tags        Tags
	// AudioArgs are extra output options for the transcoder, such as the
	// resampling applied to DSD sources.
	AudioArgs []string
}

// HasStream reports whether the job maps an explicit source stream.
func (j Job) HasStream() bool { return j.StreamIndex >= 0 }

// Album carries the values shared by every job of a run.
type Album struct {
	Artist string
	Title  string
}

// Target describes where a run's jobs read from and write to.
type Target struct {
	Source      string
	StreamIndex int
	OutputDir   string
	Extension   string
	Album       Album
}

func (t Target) job(seq, index int, name string, window Window) Job {
	return Job{
		Seq:         seq,
		Index:       index,
		Name:        name,
		Source:      t.Source,
		Window:      window,
		StreamIndex: t.StreamIndex,
		Output:      OutputPath(t.OutputDir, index, name, t.Extension),
		Tags: Tags{
			Title:  name,
			Artist: t.Album.Artist,
			Album:  t.Album.Title,
			Track:  index,
		},
	}
}

// OutputPath returns "<dir>/<index> - <name>.<ext>" with name made safe for
// the filesystem.
func OutputPath(dir string, index int, name, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	base := fmt.Sprintf("%d - %s", index, textutil.SanitizeFileName(name))
	if ext != "" {
		base += "." + ext
	}
	return filepath.Join(dir, base)
}

// FormatClock renders d as HH:MM:SS.mmm, truncating sub-millisecond time.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d.%03d", ms/3_600_000, ms/60_000%60, ms/1000%60, ms%1000)
}

// Seconds converts fractional seconds to a duration rounded to the nearest
// nanosecond.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// Label renders a track length for prompts: HH:MM:SS past an hour, MM:SS.mmm
// otherwise.
func Label(d time.Duration) string {
	ms := d.Milliseconds()
	if hours := ms / 3_600_000; hours != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, ms/60_000%60, ms/1000%60)
	}
	return fmt.Sprintf("%02d:%02d.%03d", ms/60_000%60, ms/1000%60, ms%1000)
}
