package ripping_test

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"

	"discsplit/internal/config"
	"discsplit/internal/disc/dvdvideo"
	"discsplit/internal/dispatch"
	"discsplit/internal/history"
	"discsplit/internal/media/ffmpeg"
	"discsplit/internal/media/ffprobe"
	"discsplit/internal/prompt"
	"discsplit/internal/ripping"
	"discsplit/internal/services"
	"discsplit/internal/services/sacd"
	"discsplit/internal/testsupport"
)

type recordingExecutor struct {
	mu      sync.Mutex
	calls   [][]string
	missing []string
	sources map[string][]byte
	failOn  string
}

func (r *recordingExecutor) Run(_ context.Context, _ string, args []string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, args)
	if src := argValue(args, "-i"); src != "" {
		data, err := os.ReadFile(src)
		if err != nil {
			r.missing = append(r.missing, src)
		} else {
			if r.sources == nil {
				r.sources = make(map[string][]byte)
			}
			r.sources[src] = data
		}
	}
	if r.failOn != "" && strings.Contains(args[len(args)-1], r.failOn) {
		return []byte("broken"), errors.New("exit status 1")
	}
	return nil, nil
}

func (r *recordingExecutor) sorted() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := slices.Clone(r.calls)
	slices.SortFunc(calls, func(a, b []string) int {
		return strings.Compare(a[len(a)-1], b[len(b)-1])
	})
	return calls
}

func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

type fakeProber struct {
	streams []ffprobe.Stream
	paths   []string
}

func (f *fakeProber) Inspect(_ context.Context, path string) (ffprobe.Result, error) {
	f.paths = append(f.paths, path)
	return ffprobe.Result{Streams: f.streams}, nil
}

type fakeChapters struct {
	times []dvdvideo.PlaybackTime
	path  string
}

func (f *fakeChapters) Chapters(path string) ([]dvdvideo.PlaybackTime, error) {
	f.path = path
	return f.times, nil
}

type capturingCollector struct {
	prompt.Preset
	tracks []prompt.Track
}

func (c *capturingCollector) TrackNames(tracks []prompt.Track) ([]string, error) {
	c.tracks = append([]prompt.Track(nil), tracks...)
	return c.Preset.TrackNames(tracks)
}

type fakeExtractor struct {
	titles []string
}

func (f fakeExtractor) Extract(_ context.Context, _ string, outputDir string) (sacd.Result, error) {
	dir := filepath.Join(outputDir, sacd.DSFDirName)
	result := sacd.Result{Dir: dir}
	for i, title := range f.titles {
		path := filepath.Join(dir, title+".dsf")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return sacd.Result{}, err
		}
		if err := os.WriteFile(path, []byte("dsd"), 0o644); err != nil {
			return sacd.Result{}, err
		}
		result.Tracks = append(result.Tracks, sacd.Track{Index: i + 1, Title: title, Path: path})
	}
	return result, nil
}

func multichannelStreams() []ffprobe.Stream {
	return []ffprobe.Stream{
		{Index: 0, CodecType: "video", CodecName: "mpeg2video"},
		{Index: 1, CodecType: "audio", CodecName: "pcm_dvd", Channels: 2},
		{Index: 2, CodecType: "audio", CodecName: "dts", Channels: 6},
		{Index: 3, CodecType: "audio", CodecName: "ac3", Channels: 6},
	}
}

func newPipeline(t *testing.T, cfg *config.Config, collector prompt.Collector, exec dispatch.Executor, opts ...ripping.Option) *ripping.Pipeline {
	t.Helper()
	dispatcher := dispatch.New(cfg.Tools.FFmpeg, ffmpeg.NewCommandBuilder(cfg.Output.Codec),
		dispatch.WithExecutor(exec),
		dispatch.WithScratchDir(cfg.ScratchDir()),
	)
	opts = append([]ripping.Option{ripping.WithDispatcher(dispatcher)}, opts...)
	p, err := ripping.New(cfg, collector, opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return p
}

func assertScratchEmpty(t *testing.T, cfg *config.Config) {
	t.Helper()
	entries, err := os.ReadDir(cfg.ScratchDir())
	if err != nil {
		t.Fatalf("read scratch dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected scratch dir to be empty, found %d entries", len(entries))
	}
}

func TestRunDVDVideoCutsChaptersFromConcatenatedTitle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	input := filepath.Join(t.TempDir(), "disc")
	videoTS := filepath.Join(input, "VIDEO_TS")
	testsupport.WriteFile(t, filepath.Join(videoTS, "VTS_01_0.IFO"), 64)
	testsupport.WriteSegment(t, filepath.Join(videoTS, "VTS_01_0.VOB"), 10, '0')
	testsupport.WriteSegment(t, filepath.Join(videoTS, "VTS_01_1.VOB"), 100, '1')
	testsupport.WriteSegment(t, filepath.Join(videoTS, "VTS_01_2.VOB"), 100, '2')
	testsupport.WriteSegment(t, filepath.Join(videoTS, "VTS_02_1.VOB"), 50, '3')
	output := filepath.Join(t.TempDir(), "out")

	chapters := &fakeChapters{times: []dvdvideo.PlaybackTime{{Seconds: 10}, {Seconds: 20}, {Seconds: 5}}}
	prober := &fakeProber{streams: multichannelStreams()}
	exec := &recordingExecutor{}
	collector := prompt.Preset{Artist: "Artist", AlbumTitle: "Album", Names: []string{"A", "", "C"}}
	p := newPipeline(t, cfg, collector, exec, ripping.WithChapterSource(chapters), ripping.WithProber(prober))

	outcome, err := p.Run(context.Background(), input, output)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.Kind != "dvd-video" || outcome.RunID == "" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if chapters.path != filepath.Join(videoTS, "VTS_01_0.IFO") {
		t.Fatalf("unexpected navigation file %q", chapters.path)
	}
	if len(prober.paths) != 1 || prober.paths[0] != filepath.Join(videoTS, "VTS_01_1.VOB") {
		t.Fatalf("expected first programme segment probed, got %v", prober.paths)
	}

	calls := exec.sorted()
	if len(calls) != 2 {
		t.Fatalf("expected 2 transcodes, got %d", len(calls))
	}
	first, second := calls[0], calls[1]
	if argValue(first, "-ss") != "00:00:00.000" || argValue(first, "-to") != "00:00:10.000" {
		t.Fatalf("unexpected first window %v", first)
	}
	if argValue(second, "-ss") != "00:00:30.000" || argValue(second, "-to") != "00:00:35.000" {
		t.Fatalf("unexpected second window %v", second)
	}
	if argValue(first, "-map") != "0:3" {
		t.Fatalf("expected ac3 stream 0:3 mapped, got %v", first)
	}
	if first[len(first)-1] != filepath.Join(output, "1 - A.flac") || second[len(second)-1] != filepath.Join(output, "3 - C.flac") {
		t.Fatalf("unexpected outputs %q, %q", first[len(first)-1], second[len(second)-1])
	}
	if len(exec.missing) != 0 {
		t.Fatalf("concatenated source missing while jobs ran: %v", exec.missing)
	}
	source := exec.sources[argValue(first, "-i")]
	want := strings.Repeat("0", 10) + strings.Repeat("1", 100) + strings.Repeat("2", 100)
	if string(source) != want {
		t.Fatalf("expected title segments joined in order, got %d bytes", len(source))
	}
	assertScratchEmpty(t, cfg)
	if _, err := os.Stat(filepath.Join(output, ".discsplit.lock")); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed, stat err=%v", err)
	}
}

func TestRunDVDVideoSkipsMenuSegmentsWhenConfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Dispatch.SkipMenuSegments = true
	input := filepath.Join(t.TempDir(), "VIDEO_TS")
	testsupport.WriteSegment(t, filepath.Join(input, "VTS_01_0.VOB"), 300, '0')
	testsupport.WriteSegment(t, filepath.Join(input, "VTS_01_1.VOB"), 20, '1')
	testsupport.WriteSegment(t, filepath.Join(input, "VTS_02_1.VOB"), 50, '2')
	output := filepath.Join(t.TempDir(), "out")

	chapters := &fakeChapters{times: []dvdvideo.PlaybackTime{{Seconds: 4}}}
	exec := &recordingExecutor{}
	collector := prompt.Preset{Artist: "Artist", AlbumTitle: "Album", Names: []string{"Only"}}
	p := newPipeline(t, cfg, collector, exec,
		ripping.WithChapterSource(chapters),
		ripping.WithProber(&fakeProber{streams: multichannelStreams()}),
	)

	if _, err := p.Run(context.Background(), input, output); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if chapters.path != filepath.Join(input, "VTS_02_0.IFO") {
		t.Fatalf("expected title 02 once menus are skipped, got %q", chapters.path)
	}
	calls := exec.sorted()
	if len(calls) != 1 {
		t.Fatalf("expected 1 transcode, got %d", len(calls))
	}
	if got := string(exec.sources[argValue(calls[0], "-i")]); got != strings.Repeat("2", 50) {
		t.Fatalf("unexpected concatenated source of %d bytes", len(got))
	}
}

func buildAudioNavigation(tracks [][4]uint32) []byte {
	return buildNumberedAudioNavigation(tracks, 1)
}

// buildNumberedAudioNavigation numbers timing entries from first upwards.
func buildNumberedAudioNavigation(tracks [][4]uint32, first int) []byte {
	const (
		tableSector = 1
		titleOffset = 0x10
	)
	base := tableSector * 2048
	title := base + titleOffset
	timing := title + 0x10
	sectors := timing + len(tracks)*20
	data := make([]byte, sectors+len(tracks)*12)

	binary.BigEndian.PutUint32(data[0xCC:], tableSector)
	binary.BigEndian.PutUint16(data[base:], 1)
	binary.BigEndian.PutUint32(data[base+8+4:], titleOffset)
	data[title+3] = byte(len(tracks))
	for i, tr := range tracks {
		entry := timing + i*20
		data[entry+4] = byte(first + i)
		binary.BigEndian.PutUint32(data[entry+6:], tr[0])
		binary.BigEndian.PutUint32(data[entry+10:], tr[1])
		sector := sectors + i*12
		binary.BigEndian.PutUint32(data[sector+4:], tr[2])
		binary.BigEndian.PutUint32(data[sector+8:], tr[3])
	}
	return data
}

func TestRunDVDAudioPromptsWithOutputIndexes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	input := filepath.Join(t.TempDir(), "AUDIO_TS")
	nav := buildNumberedAudioNavigation([][4]uint32{
		{0, 10 * 90000, 0, 99},
		{10 * 90000, 5 * 90000, 100, 149},
	}, 7)
	if err := os.MkdirAll(input, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(input, "ATS_01_0.IFO"), nav, 0o644); err != nil {
		t.Fatalf("write navigation: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(input, "ATS_01_1.AOB"), 2048)
	output := filepath.Join(t.TempDir(), "out")

	exec := &recordingExecutor{}
	collector := &capturingCollector{Preset: prompt.Preset{Artist: "Artist", AlbumTitle: "Album", Names: []string{"One", "Two"}}}
	p := newPipeline(t, cfg, collector, exec, ripping.WithProber(&fakeProber{streams: multichannelStreams()}))

	if _, err := p.Run(context.Background(), input, output); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(collector.tracks) != 2 || collector.tracks[0].Index != 1 || collector.tracks[1].Index != 2 {
		t.Fatalf("expected prompt indexes 1 and 2, got %+v", collector.tracks)
	}
	calls := exec.sorted()
	if len(calls) != 2 || calls[0][len(calls[0])-1] != filepath.Join(output, "1 - One.flac") {
		t.Fatalf("unexpected transcodes %v", calls)
	}
}

func TestRunDVDAudioSkipsToTrackSectors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	input := filepath.Join(t.TempDir(), "AUDIO_TS")
	nav := buildAudioNavigation([][4]uint32{
		{0, 10 * 90000, 0, 99},
		{10 * 90000, 5 * 90000, 100, 149},
	})
	if err := os.MkdirAll(input, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(input, "ATS_01_0.IFO"), nav, 0o644); err != nil {
		t.Fatalf("write navigation: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(input, "ATS_01_1.AOB"), 2048)
	output := filepath.Join(t.TempDir(), "out")

	exec := &recordingExecutor{}
	collector := prompt.Preset{Artist: "Artist", AlbumTitle: "Album", Names: []string{"", "Two"}}
	p := newPipeline(t, cfg, collector, exec, ripping.WithProber(&fakeProber{streams: []ffprobe.Stream{
		{Index: 0, CodecType: "audio", CodecName: "ac3", Channels: 6},
		{Index: 1, CodecType: "audio", CodecName: "mlp", Channels: 6},
	}}))

	if _, err := p.Run(context.Background(), input, output); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	calls := exec.sorted()
	if len(calls) != 1 {
		t.Fatalf("expected 1 transcode, got %d", len(calls))
	}
	args := calls[0]
	if argValue(args, "-skip_initial_bytes") != "204800" || argValue(args, "-t") != "00:00:05.000" {
		t.Fatalf("unexpected window %v", args)
	}
	if argValue(args, "-map") != "0:1" {
		t.Fatalf("expected mlp stream mapped, got %v", args)
	}
	if args[len(args)-1] != filepath.Join(output, "2 - Two.flac") {
		t.Fatalf("unexpected output %q", args[len(args)-1])
	}
	assertScratchEmpty(t, cfg)
}

const cueText = `PERFORMER "Band"
TITLE "Live"
FILE "album.flac" WAVE
  TRACK 01 AUDIO
    TITLE "Intro"
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    TITLE "Song"
    INDEX 01 01:00:00
`

func writeCue(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "album.flac"), 128)
	path := filepath.Join(dir, "album.cue")
	if err := os.WriteFile(path, []byte(cueText), 0o644); err != nil {
		t.Fatalf("write cue: %v", err)
	}
	return path
}

func TestRunCueUsesSheetSuggestions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cue := writeCue(t)
	output := filepath.Join(t.TempDir(), "out")
	exec := &recordingExecutor{}
	p := newPipeline(t, cfg, prompt.Preset{}, exec)

	outcome, err := p.Run(context.Background(), cue, output)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.Album.Artist != "Band" || outcome.Album.Title != "Live" {
		t.Fatalf("unexpected album %+v", outcome.Album)
	}
	calls := exec.sorted()
	if len(calls) != 2 {
		t.Fatalf("expected 2 transcodes, got %d", len(calls))
	}
	if argValue(calls[0], "-i") != filepath.Join(filepath.Dir(cue), "album.flac") {
		t.Fatalf("expected media resolved beside the sheet, got %v", calls[0])
	}
	if argValue(calls[0], "-to") != "00:01:00.000" {
		t.Fatalf("expected first track bounded, got %v", calls[0])
	}
	if argValue(calls[1], "-ss") != "00:01:00.000" || slices.Contains(calls[1], "-to") {
		t.Fatalf("expected last track open-ended, got %v", calls[1])
	}
	if !slices.Contains(calls[0], "-vn") {
		t.Fatalf("expected audio-only mapping, got %v", calls[0])
	}
}

func TestRunCueDiscardKeepsTrackOffsets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cue := writeCue(t)
	exec := &recordingExecutor{}
	p := newPipeline(t, cfg, prompt.Preset{Names: []string{"", "Song"}}, exec)

	if _, err := p.Run(context.Background(), cue, filepath.Join(t.TempDir(), "out")); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	calls := exec.sorted()
	if len(calls) != 1 || argValue(calls[0], "-ss") != "00:01:00.000" {
		t.Fatalf("unexpected calls %v", calls)
	}
	if !strings.HasSuffix(calls[0][len(calls[0])-1], "2 - Song.flac") {
		t.Fatalf("expected cue track number kept, got %q", calls[0][len(calls[0])-1])
	}
}

func TestRunSACDTranscodesDSFAndRemovesThem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	image := filepath.Join(t.TempDir(), "disc.iso")
	if err := os.WriteFile(image, []byte("header SACDMTOC trailer"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	output := filepath.Join(t.TempDir(), "out")
	exec := &recordingExecutor{}
	collector := prompt.Preset{Artist: "Artist", AlbumTitle: "Album"}
	p := newPipeline(t, cfg, collector, exec, ripping.WithExtractor(fakeExtractor{titles: []string{"First", "Second"}}))

	if _, err := p.Run(context.Background(), image, output); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	calls := exec.sorted()
	if len(calls) != 2 {
		t.Fatalf("expected 2 transcodes, got %d", len(calls))
	}
	if argValue(calls[0], "-ar") != "176400" || argValue(calls[0], "-sample_fmt") != "s32" {
		t.Fatalf("expected DSD resample arguments, got %v", calls[0])
	}
	if calls[0][len(calls[0])-1] != filepath.Join(output, "1 - First.flac") {
		t.Fatalf("unexpected output %q", calls[0][len(calls[0])-1])
	}
	if _, err := os.Stat(filepath.Join(output, sacd.DSFDirName)); !os.IsNotExist(err) {
		t.Fatalf("expected dsf directory removed, stat err=%v", err)
	}
}

func TestRunRecordsFailedJobsAndFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cue := writeCue(t)
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	exec := &recordingExecutor{failOn: "Song"}
	p := newPipeline(t, cfg, prompt.Preset{}, exec, ripping.WithRecorder(store))

	outcome, err := p.Run(context.Background(), cue, filepath.Join(t.TempDir(), "out"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if len(exec.sorted()) != 2 {
		t.Fatal("expected every job to run despite the failure")
	}

	run, err := store.GetRun(context.Background(), outcome.RunID)
	if err != nil || run == nil {
		t.Fatalf("expected recorded run, got %+v, %v", run, err)
	}
	if run.Succeeded != 1 || run.Failed != 1 || run.Error == "" {
		t.Fatalf("unexpected run summary %+v", run)
	}
	if len(run.Jobs) != 2 || run.Jobs[1].Error == "" || run.Jobs[1].ExitCode == 0 {
		t.Fatalf("unexpected job records %+v", run.Jobs)
	}
}

func TestRunFailsWithoutMultichannelStream(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	input := filepath.Join(t.TempDir(), "VIDEO_TS")
	testsupport.WriteFile(t, filepath.Join(input, "VTS_01_1.VOB"), 10)
	exec := &recordingExecutor{}
	p := newPipeline(t, cfg, prompt.Preset{Artist: "a", AlbumTitle: "b"}, exec,
		ripping.WithChapterSource(&fakeChapters{times: []dvdvideo.PlaybackTime{{Seconds: 1}}}),
		ripping.WithProber(&fakeProber{streams: []ffprobe.Stream{{Index: 0, CodecType: "audio", CodecName: "ac3", Channels: 2}}}),
	)

	_, err := p.Run(context.Background(), input, filepath.Join(t.TempDir(), "out"))
	if !errors.Is(err, services.ErrSelectionEmpty) {
		t.Fatalf("expected selection error, got %v", err)
	}
	if len(exec.sorted()) != 0 {
		t.Fatal("expected no transcodes")
	}
	assertScratchEmpty(t, cfg)
}

func TestRunRejectsMatroska(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	input := filepath.Join(t.TempDir(), "movie.bin")
	if err := os.WriteFile(input, []byte("\x1a\x45\xdf\xa3 matroska"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	p := newPipeline(t, cfg, prompt.Preset{}, &recordingExecutor{})

	_, err := p.Run(context.Background(), input, filepath.Join(t.TempDir(), "out"))
	if !errors.Is(err, services.ErrUnsupportedStructure) {
		t.Fatalf("expected unsupported structure, got %v", err)
	}
}

func TestRunMissingInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p := newPipeline(t, cfg, prompt.Preset{}, &recordingExecutor{})

	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir())
	if !errors.Is(err, services.ErrPathNotFound) {
		t.Fatalf("expected path not found, got %v", err)
	}
}

func TestRunRefusesLockedOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cue := writeCue(t)
	output := t.TempDir()
	held := flock.New(filepath.Join(output, ".discsplit.lock"))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock: %v", err)
	}
	defer held.Unlock()

	exec := &recordingExecutor{}
	p := newPipeline(t, cfg, prompt.Preset{}, exec)
	_, err = p.Run(context.Background(), cue, output)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(exec.sorted()) != 0 {
		t.Fatal("expected no transcodes while output is locked")
	}
}

func TestNewRequiresCollector(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := ripping.New(cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewRejectsUnknownChapterMode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Chapters.Mode = "angle"
	if _, err := ripping.New(cfg, prompt.Preset{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
