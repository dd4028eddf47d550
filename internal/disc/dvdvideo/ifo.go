package dvdvideo

import (
	"fmt"
	"os"
	"time"

	"discsplit/internal/disc/binread"
	"discsplit/internal/services"
)

const (
	sectorSize = 2048
	tickRate   = 90000

	pgciPointerOffset   = 0x00CC
	pgciHeaderSize      = 8
	pgciEntrySize       = 8
	pgcProgramCountOff  = 0x0002
	pgcPlaybackTimeOff  = 0x0004
	pgcProgramMapPtrOff = 0x00E6
	pgcCellTablePtrOff  = 0x00E8
	cellEntrySize       = 0x18
	cellPlaybackTimeOff = 0x0004

	// Playback times are reported with 30 sub-second units per second.
	FrameScale = 30
)

// PlaybackTime is a chapter length split into clock fields. Frames counts
// thirtieths of a second regardless of the disc's frame rate.
type PlaybackTime struct {
	Hours   int
	Minutes int
	Seconds int
	Frames  int
}

// TotalSeconds returns the playback time in seconds.
func (p PlaybackTime) TotalSeconds() float64 {
	return float64(p.Hours*3600+p.Minutes*60+p.Seconds) + float64(p.Frames)/FrameScale
}

// Duration returns the playback time as a time.Duration.
func (p PlaybackTime) Duration() time.Duration {
	whole := time.Duration(p.Hours*3600+p.Minutes*60+p.Seconds) * time.Second
	return whole + time.Duration(p.Frames)*time.Second/FrameScale
}

// ChapterMode selects what counts as one chapter of a program chain.
type ChapterMode string

const (
	// ChapterCells yields one chapter per cell playback entry. It is the
	// zero-value default.
	ChapterCells ChapterMode = "cell"
	// ChapterPrograms sums the cells of each program in the program map.
	ChapterPrograms ChapterMode = "program"
)

// ParseChapterMode maps a config value to a mode. Empty selects cells.
func ParseChapterMode(value string) (ChapterMode, error) {
	switch ChapterMode(value) {
	case "", ChapterCells:
		return ChapterCells, nil
	case ChapterPrograms:
		return ChapterPrograms, nil
	}
	return "", fmt.Errorf("unknown chapter mode %q", value)
}

// Decoder reads chapter lengths from VTS_xx_0.IFO files.
type Decoder struct {
	Mode ChapterMode
}

// Chapters implements the chapter source used by the DVD-Video pipeline.
func (d Decoder) Chapters(path string) ([]PlaybackTime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrPathNotFound, "decode", "read ifo", path, err)
	}
	return ParseChapters(data, d.Mode)
}

// ParseChapters returns the chapter lengths of the first program chain in
// presentation order. ChapterPrograms falls back to cells when the chain has
// no program map.
func ParseChapters(data []byte, mode ChapterMode) ([]PlaybackTime, error) {
	ticks, err := chainTicks(data, mode == ChapterPrograms)
	if err != nil {
		return nil, err
	}
	out := make([]PlaybackTime, len(ticks))
	for i, t := range ticks {
		out[i] = ticksToPlayback(t)
	}
	return out, nil
}

func chainTicks(data []byte, byProgram bool) ([]int64, error) {
	r := binread.New(data)
	if err := r.Seek(pgciPointerOffset); err != nil {
		return nil, err
	}
	sector, err := r.U32()
	if err != nil {
		return nil, err
	}
	pgcit := int64(sector) * sectorSize
	if err := r.Seek(pgcit); err != nil {
		return nil, err
	}
	count, err := r.U16()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, services.Wrap(services.ErrUnsupportedStructure, "decode", "program chains", "title set has no program chains", nil)
	}
	if err := r.Seek(pgcit + pgciHeaderSize + 4); err != nil {
		return nil, err
	}
	pgcOffset, err := r.U32()
	if err != nil {
		return nil, err
	}
	pgc := pgcit + int64(pgcOffset)

	if err := r.Seek(pgc + pgcProgramCountOff); err != nil {
		return nil, err
	}
	programCount, err := r.U8()
	if err != nil {
		return nil, err
	}
	cellCount, err := r.U8()
	if err != nil {
		return nil, err
	}
	if err := r.Seek(pgc + pgcProgramMapPtrOff); err != nil {
		return nil, err
	}
	programMapOff, err := r.U16()
	if err != nil {
		return nil, err
	}
	cellTableOff, err := r.U16()
	if err != nil {
		return nil, err
	}

	cells := make([]int64, cellCount)
	for i := range cells {
		if err := r.Seek(pgc + int64(cellTableOff) + int64(i)*cellEntrySize + cellPlaybackTimeOff); err != nil {
			return nil, err
		}
		raw, err := r.Bytes(4)
		if err != nil {
			return nil, err
		}
		cells[i] = timeToTicks(raw)
	}
	if !byProgram || programCount == 0 {
		return cells, nil
	}

	if err := r.Seek(pgc + int64(programMapOff)); err != nil {
		return nil, err
	}
	entries, err := r.Bytes(int64(programCount))
	if err != nil {
		return nil, err
	}

	programs := make([]int64, programCount)
	for i := range programs {
		first := int(entries[i]) - 1
		last := len(cells)
		if i+1 < len(entries) {
			last = int(entries[i+1]) - 1
		}
		if first < 0 || first > last || last > len(cells) {
			return nil, services.Wrap(services.ErrUnsupportedStructure, "decode", "program map",
				fmt.Sprintf("program %d references cells %d..%d of %d", i+1, first+1, last, len(cells)), nil)
		}
		for _, t := range cells[first:last] {
			programs[i] += t
		}
	}
	return programs, nil
}

// timeToTicks converts a BCD hh:mm:ss:ff playback time. The top two bits of
// the frame byte select 25 fps (01) or 30 fps (11).
func timeToTicks(b []byte) int64 {
	h := bcd(b[0])
	m := bcd(b[1])
	s := bcd(b[2])
	frame := bcd(b[3] & 0x3F)
	ticks := int64(h*3600+m*60+s) * tickRate
	switch (b[3] >> 6) & 0x03 {
	case 1:
		ticks += int64(frame) * (tickRate / 25)
	case 3:
		ticks += int64(frame) * (tickRate / 30)
	}
	return ticks
}

func ticksToPlayback(ticks int64) PlaybackTime {
	secs := ticks / tickRate
	rem := ticks % tickRate
	return PlaybackTime{
		Hours:   int(secs / 3600),
		Minutes: int(secs / 60 % 60),
		Seconds: int(secs % 60),
		Frames:  int(rem * FrameScale / tickRate),
	}
}

func bcd(v byte) int {
	return int((v>>4)*10 + (v & 0x0F))
}
