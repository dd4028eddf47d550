package cuesheet

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"discsplit/internal/services"
)

// FramesPerSecond is the cue sheet MM:SS:FF frame rate.
const FramesPerSecond = 75

// Sheet is a parsed single-file cue sheet.
type Sheet struct {
	Performer string
	Title     string
	File      string
	FileType  string
	Tracks    []Track
	// Dir is the directory the sheet was read from; empty for Parse.
	Dir string
}

// Track is one TRACK entry anchored at its INDEX 01.
type Track struct {
	Number    int
	Title     string
	Performer string
	// Offset is the INDEX 01 position in frames.
	Offset int
	// Length is the distance to the next track's INDEX 01 in frames, or -1
	// for the final track.
	Length int
}

// Start returns the track offset as a duration.
func (t Track) Start() time.Duration { return FramesToDuration(t.Offset) }

// Duration returns the track length and whether it is bounded.
func (t Track) Duration() (time.Duration, bool) {
	if t.Length < 0 {
		return 0, false
	}
	return FramesToDuration(t.Length), true
}

// MediaPath resolves the referenced audio file relative to the sheet.
func (s *Sheet) MediaPath() string {
	if s.File == "" || filepath.IsAbs(s.File) || s.Dir == "" {
		return s.File
	}
	return filepath.Join(s.Dir, s.File)
}

// FramesToDuration converts a frame count at 75 frames per second.
func FramesToDuration(frames int) time.Duration {
	return time.Duration(frames) * time.Second / FramesPerSecond
}

// ParseFile reads and parses the cue sheet at path.
func ParseFile(path string) (*Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrPathNotFound, "cue", "open sheet", path, err)
	}
	defer file.Close()

	sheet, err := Parse(file)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve cue path: %w", err)
	}
	sheet.Dir = filepath.Dir(abs)
	return sheet, nil
}

// Parse decodes a cue sheet. UTF-8 and UTF-16 with a byte order mark are
// honoured; text that is not valid UTF-8 is read as Windows-1252.
func Parse(r io.Reader) (*Sheet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read cue sheet: %w", err)
	}
	text, err := decodeText(raw)
	if err != nil {
		return nil, services.Wrap(services.ErrFormatUnrecognized, "cue", "decode text", "", err)
	}
	return parseLines(text)
}

func decodeText(raw []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return "", err
	}
	if utf8.Valid(raw) || hasBOM(raw) {
		return string(decoded), nil
	}
	latin, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
	if err != nil {
		return "", err
	}
	return string(latin), nil
}

func hasBOM(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(raw, []byte{0xFF, 0xFE})
}

func parseLines(text string) (*Sheet, error) {
	sheet := &Sheet{}
	var current *Track
	files := 0

	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := splitFields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		arg := func(i int) string {
			if i < len(fields) {
				return fields[i]
			}
			return ""
		}

		switch strings.ToUpper(fields[0]) {
		case "PERFORMER":
			if current != nil {
				current.Performer = arg(1)
			} else {
				sheet.Performer = arg(1)
			}
		case "TITLE":
			if current != nil {
				current.Title = arg(1)
			} else {
				sheet.Title = arg(1)
			}
		case "FILE":
			files++
			if files > 1 {
				return nil, services.Wrap(services.ErrUnsupportedStructure, "cue", "parse", fmt.Sprintf("line %d: multiple FILE entries", lineNo), nil)
			}
			sheet.File = arg(1)
			sheet.FileType = strings.ToUpper(arg(2))
		case "TRACK":
			number, err := strconv.Atoi(arg(1))
			if err != nil {
				return nil, parseError(lineNo, "track number %q", arg(1))
			}
			sheet.Tracks = append(sheet.Tracks, Track{Number: number, Offset: -1, Length: -1})
			current = &sheet.Tracks[len(sheet.Tracks)-1]
		case "INDEX":
			if current == nil {
				return nil, parseError(lineNo, "INDEX outside TRACK")
			}
			if arg(1) != "01" && arg(1) != "1" {
				continue
			}
			frames, err := parseTimestamp(arg(2))
			if err != nil {
				return nil, parseError(lineNo, "%v", err)
			}
			current.Offset = frames
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan cue sheet: %w", err)
	}

	if sheet.File == "" {
		return nil, services.Wrap(services.ErrFormatUnrecognized, "cue", "parse", "no FILE entry", nil)
	}
	for i := range sheet.Tracks {
		if sheet.Tracks[i].Offset < 0 {
			return nil, parseError(0, "track %d has no INDEX 01", sheet.Tracks[i].Number)
		}
	}
	for i := 0; i+1 < len(sheet.Tracks); i++ {
		length := sheet.Tracks[i+1].Offset - sheet.Tracks[i].Offset
		if length < 0 {
			return nil, parseError(0, "track %d starts before track %d", sheet.Tracks[i+1].Number, sheet.Tracks[i].Number)
		}
		sheet.Tracks[i].Length = length
	}
	return sheet, nil
}

// parseTimestamp converts MM:SS:FF to frames.
func parseTimestamp(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timestamp %q is not MM:SS:FF", value)
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("timestamp %q is not MM:SS:FF", value)
		}
		nums[i] = n
	}
	if nums[1] >= 60 || nums[2] >= FramesPerSecond {
		return 0, fmt.Errorf("timestamp %q out of range", value)
	}
	return (nums[0]*60+nums[1])*FramesPerSecond + nums[2], nil
}

// splitFields splits a cue line on whitespace, keeping double-quoted values
// together.
func splitFields(line string) []string {
	var fields []string
	var b strings.Builder
	inQuote := false
	pending := false
	for _, r := range strings.TrimSpace(line) {
		switch {
		case r == '"':
			inQuote = !inQuote
			pending = true
		case !inQuote && (r == ' ' || r == '\t'):
			if pending {
				fields = append(fields, b.String())
				b.Reset()
				pending = false
			}
		default:
			b.WriteRune(r)
			pending = true
		}
	}
	if pending {
		fields = append(fields, b.String())
	}
	return fields
}

func parseError(line int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if line > 0 {
		msg = fmt.Sprintf("line %d: %s", line, msg)
	}
	return services.Wrap(services.ErrFormatUnrecognized, "cue", "parse", msg, nil)
}
