package sacd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"discsplit/internal/logging"
	"discsplit/internal/services"
)

// DSFDirName is the scratch directory created under the output directory.
const DSFDirName = "dsf"

var trackFilePattern = regexp.MustCompile(`^(\d+)\s*-\s*(.+)$`)

// Track is one DSF file written by sacd_extract.
type Track struct {
	Index int
	Title string
	Path  string
}

// Extractor defines the behaviour required by the SACD pipeline.
type Extractor interface {
	Extract(ctx context.Context, image, outputDir string) (Result, error)
}

// Result lists the extracted tracks and the scratch directory holding them.
type Result struct {
	Dir    string
	Tracks []Track
}

// Cleanup removes the scratch directory.
func (r Result) Cleanup() error {
	if r.Dir == "" {
		return nil
	}
	return os.RemoveAll(r.Dir)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger attaches a logger for tool output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps the sacd_extract CLI.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
	logger  *slog.Logger
}

// New constructs an sacd_extract client. A zero timeout waits indefinitely.
func New(binary string, timeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "sacd", "init", "sacd_extract binary required", nil)
	}
	client := &Client{
		binary:  binary,
		timeout: timeout,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "sacd")
	return client, nil
}

// Extract converts the multichannel area of image into DSF files under
// <outputDir>/dsf and returns them in track order.
func (c *Client) Extract(ctx context.Context, image, outputDir string) (Result, error) {
	if outputDir == "" {
		return Result{}, errors.New("destination directory required")
	}
	dir := filepath.Join(outputDir, DSFDirName)
	if err := os.RemoveAll(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Result{}, fmt.Errorf("prepare dsf directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create dsf directory: %w", err)
	}
	result := Result{Dir: dir}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"-m", "-s", "-c", "-i", image, "-o", dir}
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("extracting sacd image", logging.String("image", image), logging.String("dir", dir))
	if err := c.exec.Run(runCtx, c.binary, args, func(line string) {
		if line = strings.TrimSpace(line); line != "" {
			logger.Debug("sacd_extract", logging.String("line", line))
		}
	}); err != nil {
		_ = result.Cleanup()
		return Result{}, services.Wrap(services.ErrExternalTool, "sacd", "extract", image, err)
	}

	tracks, err := gatherTracks(dir)
	if err != nil {
		_ = result.Cleanup()
		return Result{}, fmt.Errorf("inspect dsf output: %w", err)
	}
	if len(tracks) == 0 {
		_ = result.Cleanup()
		return Result{}, services.Wrap(services.ErrExternalTool, "sacd", "extract", "sacd_extract produced no dsf files", nil)
	}
	result.Tracks = tracks
	return result, nil
}

// gatherTracks walks dir for DSF files. sacd_extract nests them under album
// and area directories, so the walk is recursive.
func gatherTracks(dir string) ([]Track, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".dsf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	tracks := make([]Track, 0, len(paths))
	for i, path := range paths {
		tracks = append(tracks, parseTrackFile(path, i+1))
	}
	sort.SliceStable(tracks, func(a, b int) bool { return tracks[a].Index < tracks[b].Index })
	return tracks, nil
}

func parseTrackFile(path string, fallbackIndex int) Track {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	track := Track{Index: fallbackIndex, Title: strings.TrimSpace(stem), Path: path}
	if m := trackFilePattern.FindStringSubmatch(stem); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			track.Index = n
		}
		track.Title = strings.TrimSpace(m[2])
	}
	return track
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onOutput != nil {
				onOutput(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
			// Keep the pipe drained so the process can still exit.
			_, _ = io.Copy(io.Discard, r)
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	waitErr := cmd.Wait()
	if scanErr != nil {
		return fmt.Errorf("scan output: %w", scanErr)
	}
	if waitErr != nil {
		return fmt.Errorf("wait command: %w", waitErr)
	}
	return nil
}
