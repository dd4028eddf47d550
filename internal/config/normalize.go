package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeOutput()
	c.normalizeStreams()
	c.Chapters.Mode = strings.ToLower(strings.TrimSpace(c.Chapters.Mode))
	if c.Chapters.Mode == "" {
		c.Chapters.Mode = defaultChapterMode
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TempDir) != "" {
		if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
			return fmt.Errorf("paths.temp_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
	c.Tools.SACDExtract = strings.TrimSpace(c.Tools.SACDExtract)
	if c.Tools.SACDExtract == "" {
		c.Tools.SACDExtract = defaultSACDExtract
	}
}

func (c *Config) normalizeOutput() {
	ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Output.Extension)), ".")
	if ext == "" {
		ext = defaultExtension
	}
	c.Output.Extension = ext
	c.Output.Codec = strings.ToLower(strings.TrimSpace(c.Output.Codec))
	if c.Output.Codec == "" {
		c.Output.Codec = defaultCodec
	}
	if c.Output.DSDSampleRate == 0 {
		c.Output.DSDSampleRate = defaultDSDSampleRate
	}
}

func (c *Config) normalizeStreams() {
	c.Streams.DVDVideo = normalizeCodecList(c.Streams.DVDVideo)
	c.Streams.DVDAudio = normalizeCodecList(c.Streams.DVDAudio)
}

func normalizeCodecList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		codec := strings.ToLower(strings.TrimSpace(value))
		if codec == "" {
			continue
		}
		if _, ok := seen[codec]; ok {
			continue
		}
		seen[codec] = struct{}{}
		out = append(out, codec)
	}
	return out
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
