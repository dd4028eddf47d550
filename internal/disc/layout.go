package disc

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"discsplit/internal/services"
)

// Layout names the files that make up one disc domain.
type Layout struct {
	Prefix   string // VTS or ATS
	Ext      string // VOB or AOB
	Fallback string // VIDEO_TS or AUDIO_TS
	// SkipMenu leaves part 0 (the title set menu) out of size and segments.
	SkipMenu bool
}

var (
	// VideoLayout matches DVD-Video title sets. Every part, including 0,
	// counts toward its title.
	VideoLayout = Layout{Prefix: "VTS", Ext: "VOB", Fallback: "VIDEO_TS"}
	// AudioLayout matches DVD-Audio title sets.
	AudioLayout = Layout{Prefix: "ATS", Ext: "AOB", Fallback: "AUDIO_TS"}
)

// NavigationFile returns the title set IFO path for id inside dir.
func (l Layout) NavigationFile(dir, id string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_0.IFO", l.Prefix, id))
}

// WithoutMenu returns a copy of l that ignores part-0 menu segments.
func (l Layout) WithoutMenu() Layout {
	l.SkipMenu = true
	return l
}

func (l Layout) pattern() *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(l.Prefix) + `_(\d+)_(\d+)\.` + regexp.QuoteMeta(l.Ext) + `$`)
}

// Title is one recording spread over numbered segment files.
type Title struct {
	ID       string
	Dir      string
	Segments []string
	Size     int64
	// HasMenu is set when Segments[0] is the part-0 menu.
	HasMenu bool
}

// ProgramSegment returns the first segment holding programme material,
// falling back to the menu when it is the only segment.
func (t Title) ProgramSegment() string {
	if len(t.Segments) == 0 {
		return ""
	}
	if t.HasMenu && len(t.Segments) > 1 {
		return t.Segments[1]
	}
	return t.Segments[0]
}

// ScanTitles groups the layout's segment files in dir by title id and returns
// the title with the largest combined size. Equal sizes resolve to the
// lowest id. When dir holds no segments the fallback subdirectory is tried
// once.
func ScanTitles(dir string, layout Layout) (Title, error) {
	title, found, err := scanDir(dir, layout)
	if err != nil {
		return Title{}, err
	}
	if found {
		return title, nil
	}

	fallback, ok := findSubdir(dir, layout.Fallback)
	if !ok {
		return Title{}, services.Wrap(
			services.ErrPathNotFound,
			"scan",
			"find segments",
			fmt.Sprintf("no %s_*.%s files in %s", layout.Prefix, layout.Ext, dir),
			nil,
		)
	}
	title, found, err = scanDir(fallback, layout)
	if err != nil {
		return Title{}, err
	}
	if !found {
		return Title{}, services.Wrap(
			services.ErrPathNotFound,
			"scan",
			"find segments",
			fmt.Sprintf("no %s_*.%s files in %s", layout.Prefix, layout.Ext, fallback),
			nil,
		)
	}
	return title, nil
}

func scanDir(dir string, layout Layout) (Title, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Title{}, false, services.Wrap(services.ErrPathNotFound, "scan", "read directory", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	pattern := layout.pattern()
	titles := make(map[string]*Title)
	order := make([]string, 0)
	for _, name := range names {
		match := pattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		part, _ := strconv.Atoi(match[2])
		if part == 0 && layout.SkipMenu {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return Title{}, false, fmt.Errorf("stat segment %s: %w", name, err)
		}
		id := match[1]
		title, ok := titles[id]
		if !ok {
			title = &Title{ID: id, Dir: dir}
			titles[id] = title
			order = append(order, id)
		}
		if part == 0 {
			title.HasMenu = true
		}
		title.Segments = append(title.Segments, filepath.Join(dir, name))
		title.Size += info.Size()
	}
	if len(order) == 0 {
		return Title{}, false, nil
	}

	sort.Strings(order)
	best := titles[order[0]]
	for _, id := range order[1:] {
		if titles[id].Size > best.Size {
			best = titles[id]
		}
	}
	return *best, true, nil
}

func findSubdir(dir, name string) (string, bool) {
	for _, candidate := range []string{name, strings.ToLower(name)} {
		path := filepath.Join(dir, candidate)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path, true
		}
	}
	return "", false
}
