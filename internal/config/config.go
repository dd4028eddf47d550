package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
	TempDir  string `toml:"temp_dir"`
}

// Tools names the external executables the pipeline delegates to.
type Tools struct {
	FFmpeg      string `toml:"ffmpeg"`
	FFprobe     string `toml:"ffprobe"`
	SACDExtract string `toml:"sacd_extract"`
}

// Output controls the lossless files written per track.
type Output struct {
	Extension     string `toml:"extension"`
	Codec         string `toml:"codec"`
	DSDSampleRate int    `toml:"dsd_sample_rate"`
}

// Dispatch controls how transcode jobs are fanned out.
type Dispatch struct {
	// MaxParallel bounds concurrently running transcodes. Zero or negative
	// launches every job at once.
	MaxParallel int `toml:"max_parallel"`
	// SkipMenuSegments leaves VTS_xx_0/ATS_xx_0 parts out of title sizing
	// and concatenation.
	SkipMenuSegments bool `toml:"skip_menu_segments"`
}

// Streams holds the codec priority tables used to pick the multichannel
// stream, one list per disc domain. Earlier entries win.
type Streams struct {
	DVDVideo []string `toml:"dvd_video"`
	DVDAudio []string `toml:"dvd_audio"`
}

// Chapters controls how DVD-Video program chains are split into tracks.
type Chapters struct {
	// Mode is "cell" (one track per cell) or "program" (cells summed per
	// program map entry).
	Mode string `toml:"mode"`
}

// History contains configuration for the run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for discsplit.
//
// Configuration sections by subsystem:
//   - Paths: log, state, and scratch directories
//   - Tools: ffmpeg, ffprobe, and sacd_extract executables
//   - Output: lossless extension and codec
//   - Dispatch: transcode fan-out limit
//   - Streams: per-domain codec priority tables
//   - Chapters: DVD-Video chapter granularity
//   - History: SQLite run ledger
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Tools    Tools    `toml:"tools"`
	Output   Output   `toml:"output"`
	Dispatch Dispatch `toml:"dispatch"`
	Streams  Streams  `toml:"streams"`
	Chapters Chapters `toml:"chapters"`
	History  History  `toml:"history"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("discsplit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the SQLite ledger location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LogPath returns the append-only log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "discsplit.log")
}

// ScratchDir returns the directory used for temporary concatenated sources.
func (c *Config) ScratchDir() string {
	if strings.TrimSpace(c.Paths.TempDir) != "" {
		return c.Paths.TempDir
	}
	return os.TempDir()
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
