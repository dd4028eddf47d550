package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"discsplit/internal/extract"
	"discsplit/internal/fileutil"
	"discsplit/internal/logging"
	"discsplit/internal/media/ffmpeg"
	"discsplit/internal/services"
	"discsplit/internal/staging"
)

const outputTailBytes = 512

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// Option configures the dispatcher.
type Option func(*Dispatcher)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(d *Dispatcher) {
		if exec != nil {
			d.exec = exec
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMaxParallel bounds how many transcodes run at once. Zero or less
// launches every job immediately.
func WithMaxParallel(n int) Option {
	return func(d *Dispatcher) {
		d.maxParallel = n
	}
}

// WithScratchDir sets where concatenated sources are written.
func WithScratchDir(dir string) Option {
	return func(d *Dispatcher) {
		d.scratchDir = strings.TrimSpace(dir)
	}
}

// Dispatcher fans extraction jobs out to ffmpeg processes and joins on all
// of them before returning.
type Dispatcher struct {
	binary      string
	builder     *ffmpeg.CommandBuilder
	exec        Executor
	logger      *slog.Logger
	maxParallel int
	scratchDir  string
}

// New constructs a dispatcher for the given ffmpeg binary.
func New(binary string, builder *ffmpeg.CommandBuilder, opts ...Option) *Dispatcher {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if builder == nil {
		builder = ffmpeg.NewCommandBuilder("")
	}
	d := &Dispatcher{
		binary:  binary,
		builder: builder,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.NewComponentLogger(d.logger, "dispatch")
	return d
}

// Run executes every job and blocks until all have exited. Jobs are not
// cancelled by ctx and failures are not retried; the report carries one
// result per job in sequence order.
func (d *Dispatcher) Run(ctx context.Context, jobs []extract.Job) Report {
	logger := logging.WithContext(ctx, d.logger)
	runCtx := context.WithoutCancel(ctx)
	started := time.Now()

	results := make([]Result, len(jobs))
	var group errgroup.Group
	if d.maxParallel > 0 {
		group.SetLimit(d.maxParallel)
	}

	logger.Info("dispatching jobs",
		logging.Int("jobs", len(jobs)),
		logging.Int("max_parallel", d.maxParallel),
	)

	for i, job := range jobs {
		args := d.builder.Args(job)
		logger.Debug("launching transcode", logging.Int("seq", job.Seq), logging.Any("args", args))
		group.Go(func() error {
			results[i] = d.runOne(runCtx, job, args)
			res := results[i]
			if res.Err != nil {
				logger.Warn("job failed",
					logging.Int("seq", res.Seq),
					logging.String("output", res.Job.Output),
					logging.Int("exit_code", res.ExitCode),
					logging.Error(res.Err),
				)
				return nil
			}
			logger.Info("job completed",
				logging.Int("seq", res.Seq),
				logging.String("output", filepath.Base(res.Job.Output)),
				logging.Duration("elapsed", res.Elapsed),
			)
			return nil
		})
	}
	_ = group.Wait()

	report := Report{Results: results, Elapsed: time.Since(started)}
	logger.Info("dispatch finished",
		logging.Int("succeeded", report.Succeeded()),
		logging.Int("failed", len(report.Failed())),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report
}

func (d *Dispatcher) runOne(ctx context.Context, job extract.Job, args []string) Result {
	start := time.Now()
	output, err := d.exec.Run(ctx, d.binary, args)
	res := Result{
		Seq:     job.Seq,
		Job:     job,
		Elapsed: time.Since(start),
		Output:  tail(output, outputTailBytes),
	}
	if err != nil {
		res.ExitCode = exitCode(err)
		res.Err = err
	}
	return res
}

// Concatenate writes segments, in order, into a fresh file in the scratch
// directory and returns its path.
func (d *Dispatcher) Concatenate(segments []string, suffix string) (string, error) {
	if len(segments) == 0 {
		return "", services.Wrap(services.ErrPathNotFound, "dispatch", "concatenate", "no segments to concatenate", nil)
	}
	dir := d.scratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch directory: %w", err)
	}
	path := staging.TempPath(dir, uuid.NewString(), suffix)
	written, err := fileutil.ConcatFiles(path, segments)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "dispatch", "concatenate", path, err)
	}
	d.logger.Info("concatenated segments",
		logging.Int("segments", len(segments)),
		logging.Int64("bytes", written),
		logging.String("path", path),
	)
	return path, nil
}

// RunConcatenated joins segments into one temporary source, resolves jobs
// against it, runs them, and removes the source once every job has exited.
func (d *Dispatcher) RunConcatenated(ctx context.Context, segments []string, suffix string, resolve func(source string) ([]extract.Job, error)) (Report, error) {
	source, err := d.Concatenate(segments, suffix)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		if err := os.Remove(source); err != nil && !errors.Is(err, os.ErrNotExist) {
			d.logger.Warn("remove concatenated source", logging.String("path", source), logging.Error(err))
		}
	}()

	jobs, err := resolve(source)
	if err != nil {
		return Report{}, err
	}
	return d.Run(ctx, jobs), nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func tail(output []byte, limit int) string {
	if len(output) > limit {
		output = output[len(output)-limit:]
	}
	return strings.TrimSpace(string(output))
}
