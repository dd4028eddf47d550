package cuesheet

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"discsplit/internal/services"
)

const albumSheet = `REM GENRE Rock
PERFORMER "The Band"
TITLE "Live at Home"
FILE "live.flac" WAVE
  TRACK 01 AUDIO
    TITLE "Opening"
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    TITLE "Second Song"
    PERFORMER "Guest"
    INDEX 00 04:58:00
    INDEX 01 05:00:37
  TRACK 03 AUDIO
    TITLE "Encore"
    INDEX 01 09:30:00
`

func TestParseAlbum(t *testing.T) {
	sheet, err := Parse(strings.NewReader(albumSheet))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if sheet.Performer != "The Band" || sheet.Title != "Live at Home" {
		t.Fatalf("unexpected album metadata %+v", sheet)
	}
	if sheet.File != "live.flac" || sheet.FileType != "WAVE" {
		t.Fatalf("unexpected file entry %q %q", sheet.File, sheet.FileType)
	}
	if len(sheet.Tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(sheet.Tracks))
	}

	second := sheet.Tracks[1]
	if second.Number != 2 || second.Title != "Second Song" || second.Performer != "Guest" {
		t.Fatalf("unexpected second track %+v", second)
	}
	if second.Offset != (5*60)*75+37 {
		t.Fatalf("expected INDEX 01 offset, got %d", second.Offset)
	}
	wantStart := 5*time.Minute + 37*time.Second/75
	if second.Start() != wantStart {
		t.Fatalf("unexpected start %v", second.Start())
	}
	length, ok := second.Duration()
	if !ok || length != FramesToDuration((9*60+30)*75-(5*60*75+37)) {
		t.Fatalf("unexpected duration %v ok=%v", length, ok)
	}
	if _, ok := sheet.Tracks[2].Duration(); ok {
		t.Fatal("expected final track to be unbounded")
	}
}

func TestParseSingleTrackIsOpenEnded(t *testing.T) {
	sheet, err := Parse(strings.NewReader("FILE \"a.wav\" WAVE\nTRACK 01 AUDIO\nINDEX 01 00:00:00\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(sheet.Tracks) != 1 || sheet.Tracks[0].Offset != 0 || sheet.Tracks[0].Length != -1 {
		t.Fatalf("unexpected tracks %+v", sheet.Tracks)
	}
}

func TestParseLegacyEncodings(t *testing.T) {
	latin, err := charmap.Windows1252.NewEncoder().String("TITLE \"Déjà Vu\"\nFILE \"x.wav\" WAVE\n")
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	sheet, err := Parse(strings.NewReader(latin))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if sheet.Title != "Déjà Vu" {
		t.Fatalf("expected windows-1252 decoding, got %q", sheet.Title)
	}

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("TITLE \"Ünïcode\"\nFILE \"x.wav\" WAVE\n")
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	sheet, err = Parse(strings.NewReader(utf16))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if sheet.Title != "Ünïcode" {
		t.Fatalf("expected utf-16 decoding, got %q", sheet.Title)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"missing file":    "TRACK 01 AUDIO\nINDEX 01 00:00:00\n",
		"bad timestamp":   "FILE \"a.wav\" WAVE\nTRACK 01 AUDIO\nINDEX 01 00:00\n",
		"frame overflow":  "FILE \"a.wav\" WAVE\nTRACK 01 AUDIO\nINDEX 01 00:00:75\n",
		"missing index":   "FILE \"a.wav\" WAVE\nTRACK 01 AUDIO\n",
		"index no track":  "FILE \"a.wav\" WAVE\nINDEX 01 00:00:00\n",
		"backwards track": "FILE \"a.wav\" WAVE\nTRACK 01 AUDIO\nINDEX 01 01:00:00\nTRACK 02 AUDIO\nINDEX 01 00:30:00\n",
	}
	for name, text := range cases {
		if _, err := Parse(strings.NewReader(text)); !errors.Is(err, services.ErrFormatUnrecognized) {
			t.Fatalf("%s: expected ErrFormatUnrecognized, got %v", name, err)
		}
	}

	multi := "FILE \"a.wav\" WAVE\nTRACK 01 AUDIO\nINDEX 01 00:00:00\nFILE \"b.wav\" WAVE\n"
	if _, err := Parse(strings.NewReader(multi)); !errors.Is(err, services.ErrUnsupportedStructure) {
		t.Fatalf("expected ErrUnsupportedStructure for multi-file sheet, got %v", err)
	}
}

func TestParseFileResolvesMediaRelativeToSheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "album.cue")
	if err := os.WriteFile(path, []byte(albumSheet), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	t.Chdir(t.TempDir())

	sheet, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}
	if sheet.MediaPath() != filepath.Join(dir, "live.flac") {
		t.Fatalf("unexpected media path %q", sheet.MediaPath())
	}
}

func TestSplitFields(t *testing.T) {
	got := splitFields(`  FILE "My Album (Disc 1).wav"   WAVE `)
	if len(got) != 3 || got[1] != "My Album (Disc 1).wav" || got[2] != "WAVE" {
		t.Fatalf("unexpected fields %q", got)
	}
	if got := splitFields(`TITLE ""`); len(got) != 2 || got[1] != "" {
		t.Fatalf("expected empty quoted field, got %q", got)
	}
}
