package dvdaudio

import (
	"fmt"
	"io"
	"os"
	"time"

	"discsplit/internal/disc/binread"
	"discsplit/internal/services"
)

// Layout of the audio title set navigation file. All integers are big-endian.
const (
	SectorSize = 2048
	PTSRate    = 90000

	titleTablePointerOffset = 0x00CC

	titleTableReserved  = 6
	titleEntryReserved  = 4
	trackCountOffset    = 0x03
	trackCountReserved  = 10
	timingTableOffset   = 0x10
	timingEntrySize     = 20 // trailing 6 bytes unused
	timingEntryReserved = 4
	timingNumberPad     = 1
	sectorEntrySize     = 12
	sectorEntryReserved = 4
)

// Track is one entry from the first title's timing and sector tables.
type Track struct {
	Number      int
	FirstPTS    uint32
	PTSLength   uint32
	FirstSector uint32
	LastSector  uint32
}

// StartSeconds returns the presentation start in seconds.
func (t Track) StartSeconds() float64 { return float64(t.FirstPTS) / PTSRate }

// DurationSeconds returns the presentation length in seconds.
func (t Track) DurationSeconds() float64 { return float64(t.PTSLength) / PTSRate }

// Start returns the presentation start as a duration.
func (t Track) Start() time.Duration { return ticksToDuration(t.FirstPTS) }

// Duration returns the presentation length as a duration.
func (t Track) Duration() time.Duration { return ticksToDuration(t.PTSLength) }

// ByteOffset returns the offset of FirstSector in the concatenated track data.
func (t Track) ByteOffset() int64 { return int64(t.FirstSector) * SectorSize }

// TitleTable is the decoded navigation structure. Only the first title is
// expanded into Tracks; the remaining offsets are kept for reporting.
type TitleTable struct {
	TableSector  uint32
	TitleOffsets []uint32
	// AuxSectorOffset is read from the first title's header and carried as-is.
	AuxSectorOffset uint16
	Tracks          []Track
}

// TitleCount reports how many titles the table declared.
func (t TitleTable) TitleCount() int { return len(t.TitleOffsets) }

// DecodeFile reads and decodes the navigation file at path.
func DecodeFile(path string) (TitleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TitleTable{}, services.Wrap(services.ErrPathNotFound, "decode", "read navigation file", path, err)
	}
	return DecodeBytes(data)
}

// Decode reads src to EOF and decodes it.
func Decode(src io.Reader) (TitleTable, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return TitleTable{}, fmt.Errorf("read navigation data: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes an in-memory navigation file.
func DecodeBytes(data []byte) (TitleTable, error) {
	r := binread.New(data)
	var table TitleTable

	if err := r.Seek(titleTablePointerOffset); err != nil {
		return TitleTable{}, err
	}
	sector, err := r.U32()
	if err != nil {
		return TitleTable{}, err
	}
	table.TableSector = sector
	base := int64(sector) * SectorSize

	if err := r.Seek(base); err != nil {
		return TitleTable{}, err
	}
	count, err := r.U16()
	if err != nil {
		return TitleTable{}, err
	}
	if err := r.Skip(titleTableReserved); err != nil {
		return TitleTable{}, err
	}
	table.TitleOffsets = make([]uint32, 0, count)
	for i := 0; i < int(count); i++ {
		if err := r.Skip(titleEntryReserved); err != nil {
			return TitleTable{}, err
		}
		offset, err := r.U32()
		if err != nil {
			return TitleTable{}, err
		}
		table.TitleOffsets = append(table.TitleOffsets, offset)
	}
	if len(table.TitleOffsets) == 0 {
		return TitleTable{}, services.Wrap(services.ErrUnsupportedStructure, "decode", "title table", "title table declares no titles", nil)
	}

	title := base + int64(table.TitleOffsets[0])
	if err := r.Seek(title + trackCountOffset); err != nil {
		return TitleTable{}, err
	}
	trackCount, err := r.U8()
	if err != nil {
		return TitleTable{}, err
	}
	if err := r.Skip(trackCountReserved); err != nil {
		return TitleTable{}, err
	}
	if table.AuxSectorOffset, err = r.U16(); err != nil {
		return TitleTable{}, err
	}

	tracks := make([]Track, trackCount)
	timing := title + timingTableOffset
	for i := range tracks {
		if err := r.Seek(timing + int64(i)*timingEntrySize); err != nil {
			return TitleTable{}, err
		}
		if err := readTiming(r, &tracks[i]); err != nil {
			return TitleTable{}, err
		}
	}

	sectors := timing + int64(trackCount)*timingEntrySize
	for i := range tracks {
		if err := r.Seek(sectors + int64(i)*sectorEntrySize); err != nil {
			return TitleTable{}, err
		}
		if err := readSectors(r, &tracks[i]); err != nil {
			return TitleTable{}, err
		}
	}

	table.Tracks = tracks
	return table, nil
}

func readTiming(r *binread.Reader, track *Track) error {
	if err := r.Skip(timingEntryReserved); err != nil {
		return err
	}
	number, err := r.U8()
	if err != nil {
		return err
	}
	if err := r.Skip(timingNumberPad); err != nil {
		return err
	}
	if track.FirstPTS, err = r.U32(); err != nil {
		return err
	}
	if track.PTSLength, err = r.U32(); err != nil {
		return err
	}
	track.Number = int(number)
	return nil
}

func readSectors(r *binread.Reader, track *Track) error {
	if err := r.Skip(sectorEntryReserved); err != nil {
		return err
	}
	var err error
	if track.FirstSector, err = r.U32(); err != nil {
		return err
	}
	track.LastSector, err = r.U32()
	return err
}

func ticksToDuration(ticks uint32) time.Duration {
	return time.Duration(ticks) * time.Second / PTSRate
}
