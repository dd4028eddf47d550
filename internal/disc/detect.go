package disc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"discsplit/internal/services"
)

// Kind identifies the input domain handled by a pipeline.
type Kind string

const (
	KindDVDVideo Kind = "dvd-video"
	KindDVDAudio Kind = "dvd-audio"
	KindCue      Kind = "cue"
	KindSACD     Kind = "sacd"
	KindMatroska Kind = "matroska"
)

func (k Kind) String() string { return string(k) }

const sniffLimit = 1 << 20

var (
	sacdSignature     = []byte("SACDMTOC")
	matroskaSignature = []byte("matroska")
)

// Detect classifies an input path. Directories are classified by the segment
// files they (or their VIDEO_TS/AUDIO_TS subdirectory) hold, .cue files by
// extension, and anything else by signatures in its first mebibyte.
func Detect(path string) (Kind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", services.Wrap(services.ErrPathNotFound, "detect", "stat input", path, err)
	}
	if info.IsDir() {
		return detectDir(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return KindCue, nil
	}
	return sniff(path)
}

func detectDir(dir string) (Kind, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", services.Wrap(services.ErrPathNotFound, "detect", "read directory", dir, err)
	}
	var hasVOB, hasAOB bool
	for _, entry := range entries {
		switch strings.ToUpper(filepath.Ext(entry.Name())) {
		case ".VOB":
			hasVOB = true
		case ".AOB":
			hasAOB = true
		}
	}
	switch {
	case hasAOB:
		return KindDVDAudio, nil
	case hasVOB:
		return KindDVDVideo, nil
	}
	// A DVD-Audio disc also carries VIDEO_TS for compatibility players.
	if _, ok := findSubdir(dir, AudioLayout.Fallback); ok {
		return KindDVDAudio, nil
	}
	if _, ok := findSubdir(dir, VideoLayout.Fallback); ok {
		return KindDVDVideo, nil
	}
	return "", services.Wrap(services.ErrPathNotFound, "detect", "find segments", fmt.Sprintf("no VOB or AOB files in %s", dir), nil)
}

func sniff(path string) (Kind, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrPathNotFound, "detect", "open input", path, err)
	}
	defer file.Close()

	head := make([]byte, sniffLimit)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	head = head[:n]

	switch {
	case bytes.Contains(head, sacdSignature):
		return KindSACD, nil
	case bytes.Contains(head, matroskaSignature):
		return KindMatroska, nil
	}
	return "", services.Wrap(services.ErrFormatUnrecognized, "detect", "sniff input", filepath.Base(path), nil)
}
