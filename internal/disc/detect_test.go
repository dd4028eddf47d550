package disc_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"discsplit/internal/disc"
	"discsplit/internal/services"
)

func TestDetectDirectories(t *testing.T) {
	video := t.TempDir()
	writeSized(t, filepath.Join(video, "VIDEO_TS", "VTS_01_1.VOB"), 1)
	if kind, err := disc.Detect(video); err != nil || kind != disc.KindDVDVideo {
		t.Fatalf("expected dvd-video, got %v, %v", kind, err)
	}

	audio := t.TempDir()
	writeSized(t, filepath.Join(audio, "ATS_01_1.AOB"), 1)
	if kind, err := disc.Detect(audio); err != nil || kind != disc.KindDVDAudio {
		t.Fatalf("expected dvd-audio, got %v, %v", kind, err)
	}

	hybrid := t.TempDir()
	if err := os.MkdirAll(filepath.Join(hybrid, "VIDEO_TS"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(hybrid, "AUDIO_TS"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if kind, err := disc.Detect(hybrid); err != nil || kind != disc.KindDVDAudio {
		t.Fatalf("expected hybrid disc to prefer dvd-audio, got %v, %v", kind, err)
	}

	empty := t.TempDir()
	if _, err := disc.Detect(empty); !errors.Is(err, services.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound for empty directory, got %v", err)
	}
}

func TestDetectFiles(t *testing.T) {
	dir := t.TempDir()

	cue := filepath.Join(dir, "album.CUE")
	writeSized(t, cue, 0)
	if kind, err := disc.Detect(cue); err != nil || kind != disc.KindCue {
		t.Fatalf("expected cue, got %v, %v", kind, err)
	}

	sacd := filepath.Join(dir, "disc.iso")
	payload := make([]byte, 512*1024)
	copy(payload[256*1024:], "SACDMTOC")
	if err := os.WriteFile(sacd, payload, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if kind, err := disc.Detect(sacd); err != nil || kind != disc.KindSACD {
		t.Fatalf("expected sacd, got %v, %v", kind, err)
	}

	mkv := filepath.Join(dir, "video.mkv")
	if err := os.WriteFile(mkv, []byte("\x1a\x45\xdf\xa3....matroska"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if kind, err := disc.Detect(mkv); err != nil || kind != disc.KindMatroska {
		t.Fatalf("expected matroska, got %v, %v", kind, err)
	}

	late := filepath.Join(dir, "late.iso")
	big := make([]byte, (1<<20)+64)
	copy(big[1<<20:], "SACDMTOC")
	if err := os.WriteFile(late, big, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := disc.Detect(late); !errors.Is(err, services.ErrFormatUnrecognized) {
		t.Fatalf("expected signature past 1 MiB to be ignored, got %v", err)
	}
}

func TestDetectMissingPath(t *testing.T) {
	_, err := disc.Detect(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, services.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
}
