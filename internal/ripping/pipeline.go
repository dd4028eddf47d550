package ripping

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"discsplit/internal/config"
	"discsplit/internal/disc"
	"discsplit/internal/disc/dvdvideo"
	"discsplit/internal/dispatch"
	"discsplit/internal/extract"
	"discsplit/internal/history"
	"discsplit/internal/logging"
	"discsplit/internal/media/ffmpeg"
	"discsplit/internal/media/ffprobe"
	"discsplit/internal/prompt"
	"discsplit/internal/services"
	"discsplit/internal/services/sacd"
	"discsplit/internal/staging"
)

const (
	// lockFileName guards an output directory against concurrent runs.
	lockFileName = ".discsplit.lock"
	// staleScratchAge is how old a leftover concatenated source must be
	// before a new run deletes it.
	staleScratchAge = 24 * time.Hour
)

// ChapterSource returns the ordered chapter lengths of a DVD-Video title from
// its navigation file.
type ChapterSource interface {
	Chapters(path string) ([]dvdvideo.PlaybackTime, error)
}

// Dispatcher runs extraction jobs and reports per-job results.
type Dispatcher interface {
	Run(ctx context.Context, jobs []extract.Job) dispatch.Report
	RunConcatenated(ctx context.Context, segments []string, suffix string, resolve func(source string) ([]extract.Job, error)) (dispatch.Report, error)
}

// Recorder persists finished runs.
type Recorder interface {
	RecordRun(ctx context.Context, run history.Run) error
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithChapterSource overrides the DVD-Video navigation decoder.
func WithChapterSource(src ChapterSource) Option {
	return func(p *Pipeline) {
		if src != nil {
			p.chapters = src
		}
	}
}

// WithProber overrides the stream prober.
func WithProber(prober ffprobe.Prober) Option {
	return func(p *Pipeline) {
		if prober != nil {
			p.prober = prober
		}
	}
}

// WithExtractor overrides the SACD image extractor.
func WithExtractor(extractor sacd.Extractor) Option {
	return func(p *Pipeline) {
		if extractor != nil {
			p.extractor = extractor
		}
	}
}

// WithDispatcher overrides the job dispatcher.
func WithDispatcher(d Dispatcher) Option {
	return func(p *Pipeline) {
		if d != nil {
			p.dispatcher = d
		}
	}
}

// WithRecorder records every dispatched run.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// Pipeline turns one disc structure into named lossless tracks.
type Pipeline struct {
	cfg        *config.Config
	logger     *slog.Logger
	collector  prompt.Collector
	chapters   ChapterSource
	prober     ffprobe.Prober
	extractor  sacd.Extractor
	dispatcher Dispatcher
	recorder   Recorder
}

// Outcome summarises a finished run.
type Outcome struct {
	RunID  string
	Kind   disc.Kind
	Album  extract.Album
	Report dispatch.Report
}

// New constructs a pipeline with default collaborators built from cfg.
func New(cfg *config.Config, collector prompt.Collector, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "configuration required", nil)
	}
	if collector == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "metadata collector required", nil)
	}
	mode, err := dvdvideo.ParseChapterMode(cfg.Chapters.Mode)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "chapters.mode", err)
	}
	p := &Pipeline{
		cfg:       cfg,
		logger:    logging.NewNop(),
		collector: collector,
		chapters:  dvdvideo.Decoder{Mode: mode},
		prober:    ffprobe.Inspector{Binary: cfg.Tools.FFprobe},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.dispatcher == nil {
		p.dispatcher = dispatch.New(
			cfg.Tools.FFmpeg,
			ffmpeg.NewCommandBuilder(cfg.Output.Codec),
			dispatch.WithLogger(p.logger),
			dispatch.WithMaxParallel(cfg.Dispatch.MaxParallel),
			dispatch.WithScratchDir(cfg.ScratchDir()),
		)
	}
	if p.extractor == nil {
		client, err := sacd.New(cfg.Tools.SACDExtract, 0, sacd.WithLogger(p.logger))
		if err != nil {
			return nil, err
		}
		p.extractor = client
	}
	p.logger = logging.NewComponentLogger(p.logger, "pipeline")
	return p, nil
}

// Run detects the format of input, collects metadata, and extracts every
// named track into output. It fails when any extraction job fails, after all
// jobs have exited.
func (p *Pipeline) Run(ctx context.Context, input, output string) (Outcome, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	outcome := Outcome{RunID: runID}
	started := time.Now()

	input, err := filepath.Abs(input)
	if err != nil {
		return outcome, services.Wrap(services.ErrPathNotFound, "pipeline", "resolve input", input, err)
	}
	output, err = filepath.Abs(output)
	if err != nil {
		return outcome, services.Wrap(services.ErrConfiguration, "pipeline", "resolve output", output, err)
	}

	kind, err := disc.Detect(input)
	if err != nil {
		return outcome, err
	}
	outcome.Kind = kind

	logger := logging.WithContext(ctx, p.logger)
	staging.CleanStale(ctx, p.cfg.ScratchDir(), staleScratchAge, p.logger)
	logger.Info("run started",
		logging.String("input", input),
		logging.String("output", output),
		logging.String("format", kind.String()),
	)

	if err := os.MkdirAll(output, 0o755); err != nil {
		return outcome, services.Wrap(services.ErrConfiguration, "pipeline", "create output", output, err)
	}
	lock := flock.New(filepath.Join(output, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return outcome, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return outcome, services.Wrap(services.ErrConfiguration, "pipeline", "acquire output lock",
			"another discsplit run is writing to "+output, nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
		_ = os.Remove(lock.Path())
	}()

	var flowErr error
	switch kind {
	case disc.KindDVDVideo:
		outcome.Album, outcome.Report, flowErr = p.runDVDVideo(services.WithStage(ctx, "dvd-video"), input, output)
	case disc.KindDVDAudio:
		outcome.Album, outcome.Report, flowErr = p.runDVDAudio(services.WithStage(ctx, "dvd-audio"), input, output)
	case disc.KindCue:
		outcome.Album, outcome.Report, flowErr = p.runCue(services.WithStage(ctx, "cue"), input, output)
	case disc.KindSACD:
		outcome.Album, outcome.Report, flowErr = p.runSACD(services.WithStage(ctx, "sacd"), input, output)
	case disc.KindMatroska:
		flowErr = services.Wrap(services.ErrUnsupportedStructure, "pipeline", "dispatch", "matroska sources are not supported", nil)
	default:
		flowErr = services.Wrap(services.ErrFormatUnrecognized, "pipeline", "dispatch", kind.String(), nil)
	}
	if flowErr != nil {
		logger.Error("run aborted", logging.Error(flowErr))
		return outcome, flowErr
	}

	runErr := outcome.Report.Err()
	p.record(ctx, outcome, input, output, started, runErr)
	if runErr != nil {
		logger.Error("run finished with failures",
			logging.Int("succeeded", outcome.Report.Succeeded()),
			logging.Int("failed", len(outcome.Report.Failed())),
		)
		return outcome, runErr
	}
	logger.Info("run finished",
		logging.Int("tracks", outcome.Report.Succeeded()),
		logging.Duration("elapsed", time.Since(started)),
	)
	return outcome, nil
}
